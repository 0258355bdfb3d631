package report

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/varmo/hwstress/internal/bench"
	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// Repository persists finished benchmark runs.
type Repository interface {
	Store(ctx context.Context, report *bench.RunReport) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", cfg.DBPath).Msg("initializing run repository")

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

// Store writes a run and all its samples in one transaction. A finished run
// is never partially persisted.
func (r *sqliteRepository) Store(ctx context.Context, report *bench.RunReport) error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	result, err := tx.ExecContext(ctx, `
        INSERT INTO runs (
            label, started_at, finished_at, duration_seconds,
            aborted_early, abort_reason,
            os, processor, physical_cores, logical_cores, gpu_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		report.Config.Label,
		report.StartedAt.Unix(),
		report.FinishedAt.Unix(),
		report.Config.Duration.Seconds(),
		boolToInt(report.AbortedEarly),
		report.AbortReason,
		report.SystemInfo.OS,
		report.SystemInfo.Processor,
		report.SystemInfo.PhysicalCores,
		report.SystemInfo.LogicalCores,
		len(report.SystemInfo.GPUs),
	)
	if err != nil {
		tx.Rollback()
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO run_samples (run_id, at_ns, metric, value, unit, estimated)
        VALUES (?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}
	defer stmt.Close()

	for _, sample := range report.Samples {
		_, err := stmt.ExecContext(ctx,
			runID,
			sample.At.UnixNano(),
			sample.Metric.String(),
			sample.Value,
			sample.Unit.String(),
			boolToInt(sample.Estimated),
		)
		if err != nil {
			tx.Rollback()
			return errFactory.Wrap(errors.ErrStorageAccess, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(errors.ErrStorageClose, err)
	}

	return nil
}
