package bench

import (
	"testing"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	short := ShortPreset()
	require.NoError(t, short.Validate())
	assert.Equal(t, "short", short.Label)
	assert.Equal(t, 30*time.Second, short.Duration)

	extended := ExtendedPreset()
	require.NoError(t, extended.Validate())
	assert.Equal(t, "extended", extended.Label)
	assert.Equal(t, 60*time.Second, extended.Duration)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
		code   errors.ErrorCode
	}{
		{
			name:   "zero duration",
			mutate: func(c *RunConfig) { c.Duration = 0 },
			code:   errors.ErrInvalidDuration,
		},
		{
			name:   "negative duration",
			mutate: func(c *RunConfig) { c.Duration = -time.Second },
			code:   errors.ErrInvalidDuration,
		},
		{
			name:   "zero sample interval",
			mutate: func(c *RunConfig) { c.SampleInterval = 0 },
			code:   errors.ErrInvalidInterval,
		},
		{
			name:   "cpu ceiling above 100",
			mutate: func(c *RunConfig) { c.CPUCeilingPercent = 120 },
			code:   errors.ErrInvalidCeiling,
		},
		{
			name:   "cpu ceiling zero",
			mutate: func(c *RunConfig) { c.CPUCeilingPercent = 0 },
			code:   errors.ErrInvalidCeiling,
		},
		{
			name:   "memory ceiling negative",
			mutate: func(c *RunConfig) { c.MemoryCeilingPercent = -1 },
			code:   errors.ErrInvalidCeiling,
		},
		{
			name: "no phases enabled",
			mutate: func(c *RunConfig) {
				c.IncludeCPU = false
				c.IncludeMemory = false
				c.IncludeGPU = false
			},
			code: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ShortPreset()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestEnabledPhases(t *testing.T) {
	cfg := DefaultRunConfig()
	assert.Equal(t, 3, cfg.enabledPhases())

	cfg.IncludeGPU = false
	assert.Equal(t, 2, cfg.enabledPhases())

	cfg.IncludeMemory = false
	assert.Equal(t, 1, cfg.enabledPhases())
}
