package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/testutil"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"45", 45 * time.Second},
		{" 10M ", 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseInterval(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntervalRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "h", "0", "-5m", "1.5h", "10d", "99999999999999999h"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseInterval(raw)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestParseIntervalOrDefault(t *testing.T) {
	logger := testutil.NopLogger()

	assert.Equal(t, int64(30000), ParseIntervalOrDefault("30s", logger).Milliseconds())
	assert.Equal(t, int64(300000), ParseIntervalOrDefault("5m", logger).Milliseconds())
	assert.Equal(t, int64(7200000), ParseIntervalOrDefault("2h", logger).Milliseconds())
	assert.Equal(t, int64(3600000), ParseIntervalOrDefault("abc", logger).Milliseconds())
	assert.Equal(t, int64(45000), ParseIntervalOrDefault("45", logger).Milliseconds())
	assert.Equal(t, model.DefaultInterval, ParseIntervalOrDefault("", logger))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "45s", FormatInterval(45*time.Second))
	assert.Equal(t, "5m", FormatInterval(5*time.Minute))
	assert.Equal(t, "2h", FormatInterval(2*time.Hour))
	assert.Equal(t, "1m", FormatInterval(90*time.Second))
}
