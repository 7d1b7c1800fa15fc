package config

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/listgate/internal/model"
)

// ParseInterval parses a recheck interval: a positive integer with an optional
// unit suffix s, m or h. A bare integer is seconds.
func ParseInterval(raw string) (time.Duration, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0, fmt.Errorf("%w: empty interval", model.ErrValidation)
	}

	unit := time.Second
	digits := value
	switch value[len(value)-1] {
	case 's':
		digits = value[:len(value)-1]
	case 'm':
		unit = time.Minute
		digits = value[:len(value)-1]
	case 'h':
		unit = time.Hour
		digits = value[:len(value)-1]
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid interval %q", model.ErrValidation, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: interval %q must be positive", model.ErrValidation, raw)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: interval %q is too large", model.ErrValidation, raw)
	}
	return time.Duration(n) * unit, nil
}

// ParseIntervalOrDefault is ParseInterval with a logged fallback to the one hour default
func ParseIntervalOrDefault(raw string, logger *slog.Logger) time.Duration {
	d, err := ParseInterval(raw)
	if err != nil {
		logger.Warn("invalid recheck interval, using default",
			slog.String("interval", raw),
			slog.Duration("default", model.DefaultInterval),
			slog.String("error", err.Error()))
		return model.DefaultInterval
	}
	return d
}

// FormatInterval renders d in the largest whole unit that fits: 45s, 5m, 2h
func FormatInterval(d time.Duration) string {
	seconds := int64(d / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%dh", seconds/3600)
	}
}
