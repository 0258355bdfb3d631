package report

import (
	"database/sql"

	"codeberg.org/varmo/hwstress/internal/errors"
)

func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            label TEXT,
            started_at INTEGER,
            finished_at INTEGER,
            duration_seconds REAL,
            aborted_early INTEGER,
            abort_reason TEXT,
            os TEXT,
            processor TEXT,
            physical_cores INTEGER,
            logical_cores INTEGER,
            gpu_count INTEGER
        );

        CREATE TABLE IF NOT EXISTS run_samples (
            run_id INTEGER REFERENCES runs(id),
            at_ns INTEGER,
            metric TEXT,
            value REAL,
            unit TEXT,
            estimated INTEGER
        );

        CREATE INDEX IF NOT EXISTS idx_run_samples_run
            ON run_samples(run_id, at_ns)
    `)
	if err != nil {
		return errFactory.Wrap(errors.ErrStorageInit, err)
	}

	return nil
}
