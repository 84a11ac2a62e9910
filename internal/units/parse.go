package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DPI bounds accepted from user input.
const (
	MinDPI = 1
	MaxDPI = 9999
)

// ParseValue parses a user-entered dimension or length. The value must be
// a finite positive number; anything else is rejected with ErrInvalidValue
// so the caller's stored value stays untouched.
func ParseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", s, ErrInvalidValue)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("parse value %q: out of range: %w", s, ErrInvalidValue)
	}
	return v, nil
}

// ParseDPI parses a user-entered DPI. Must be an integer in [1, 9999].
func ParseDPI(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse dpi %q: %w", s, ErrInvalidValue)
	}
	if v < MinDPI || v > MaxDPI {
		return 0, fmt.Errorf("parse dpi %d: out of range [%d,%d]: %w", v, MinDPI, MaxDPI, ErrInvalidValue)
	}
	return v, nil
}
