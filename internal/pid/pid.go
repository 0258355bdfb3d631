// Package pid guards against concurrent stress runs on the same host: two
// benchmarks stacking their synthetic load would defeat the safety ceilings.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/varmo/hwstress/internal/errors"
)

const pidFile = "hwstress.pid"

// Write writes the current process ID to the PID file. If an existing file
// names a live process, ErrAlreadyRunning is returned; a stale file from a
// dead process is silently replaced.
func Write() error {
	errFactory := errors.New()
	pid := os.Getpid()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		existing, err := strconv.Atoi(string(data))
		if err == nil {
			process, err := os.FindProcess(existing)
			if err == nil && process.Signal(syscall.Signal(0)) == nil {
				return errFactory.New(errors.ErrAlreadyRunning)
			}
		}
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file. A missing file is not an error.
func Remove() error {
	errFactory := errors.New()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}
