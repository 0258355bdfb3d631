package telemetry

import (
	"context"
	"fmt"
	"os/exec"

	"codeberg.org/varmo/hwstress/internal/errors"
)

// Probe is a single platform-specific attempt to read one metric. Probes
// never return Go errors; failures are folded into the ProbeResult. The
// resolver bounds each invocation with a timeout context.
type Probe interface {
	Name() string
	Invoke(ctx context.Context) ProbeResult
}

// commandRunner abstracts external tool invocation so probe parsers can be
// tested against canned output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// commandResult folds the usual vendor-CLI failure modes into ProbeResult:
// a missing binary is a routine miss, anything else is a transient failure.
func commandResult(output []byte, err error, tool string) ([]byte, ProbeResult, bool) {
	if err == nil {
		return output, ProbeResult{}, true
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return nil, Unavailable(fmt.Sprintf("%s not found on PATH", tool)), false
	}

	return nil, Failure(err), false
}
