package report

import "codeberg.org/varmo/hwstress/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/hwstress/runs.db"
)

type Config struct {
	DBPath string
}

func DefaultConfig() Config {
	return Config{
		DBPath: defaultDBPath,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.DBPath == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "run database path is empty")
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
