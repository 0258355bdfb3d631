package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
)

// Row is one monitoring tick destined for CSV export.
type Row struct {
	At         time.Time
	CPUPercent float64
	MemPercent float64
}

// CSVExporter writes monitoring rows to a file after a session completes.
// There is no streaming requirement; the whole sequence is written at once.
type CSVExporter struct {
	path string
}

func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

func (e *CSVExporter) Path() string {
	return e.path
}

// Export writes the header and all rows in order.
func (e *CSVExporter) Export(rows []Row) error {
	errFactory := errors.New()

	f, err := os.Create(e.path)
	if err != nil {
		return errFactory.Wrap(errors.ErrExportFailed, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "cpu_usage", "memory_usage"}); err != nil {
		return errFactory.Wrap(errors.ErrExportFailed, err)
	}

	for _, row := range rows {
		record := []string{
			row.At.Format(time.RFC3339Nano),
			strconv.FormatFloat(row.CPUPercent, 'f', 2, 64),
			strconv.FormatFloat(row.MemPercent, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return errFactory.Wrap(errors.ErrExportFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errFactory.Wrap(errors.ErrExportFailed, err)
	}

	return nil
}
