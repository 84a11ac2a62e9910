// Package calibrate implements the two-click scale calibration workflow:
// the user clicks two points spanning a known real-world distance and the
// resulting pixels-per-unit factor replaces DPI-based conversion.
package calibrate

import (
	"errors"
	"fmt"

	"doc-dewarp/pkg/geometry"
)

// ErrInvalidCalibration is returned when a length is committed without
// exactly two points, or with a non-positive length. The session state is
// left unchanged on rejection.
var ErrInvalidCalibration = errors.New("invalid calibration input")

// DefaultPointRadius is the hit-test radius for grabbing a placed
// calibration point.
const DefaultPointRadius = 10.0

// Target identifies which view a calibration session measures on.
type Target int

const (
	TargetNone Target = iota
	TargetSource
	TargetResult
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetSource:
		return "source"
	case TargetResult:
		return "result"
	default:
		return "none"
	}
}

// Calibrator is the scale calibration state machine:
//
//	Idle -> Collecting(0) -> Collecting(1) -> AwaitingLength -> Idle(calibrated)
//
// Cancel returns to Idle from any in-progress state without disturbing a
// previously committed factor.
type Calibrator struct {
	target Target
	points []geometry.Point2D

	// Committed calibration. A factor of exactly 1.0 means uncalibrated.
	length float64
	factor float64
}

// New returns an idle, uncalibrated Calibrator.
func New() *Calibrator {
	return &Calibrator{factor: 1.0}
}

// Active reports whether a calibration session is in progress.
func (c *Calibrator) Active() bool {
	return c.target != TargetNone
}

// Target returns the current session target.
func (c *Calibrator) Target() Target {
	return c.target
}

// Start begins a calibration session on the given target, discarding any
// in-progress points.
func (c *Calibrator) Start(target Target) error {
	if target != TargetSource && target != TargetResult {
		return fmt.Errorf("start calibration on %q: %w", target, ErrInvalidCalibration)
	}
	c.target = target
	c.points = nil
	return nil
}

// AddPoint places a calibration point. Returns true when the session has
// collected both points and is awaiting a length. Points beyond the
// second, or points placed with no active session, are ignored.
func (c *Calibrator) AddPoint(p geometry.Point2D) bool {
	if c.target == TargetNone {
		return false
	}
	if len(c.points) < 2 {
		c.points = append(c.points, p)
	}
	return len(c.points) == 2
}

// PointCount returns the number of points placed in the current session.
func (c *Calibrator) PointCount() int {
	return len(c.points)
}

// Points returns a copy of the placed calibration points.
func (c *Calibrator) Points() []geometry.Point2D {
	out := make([]geometry.Point2D, len(c.points))
	copy(out, c.points)
	return out
}

// PixelDistance returns the Euclidean distance between the two placed
// points, or false if fewer than two are placed.
func (c *Calibrator) PixelDistance() (float64, bool) {
	if len(c.points) != 2 {
		return 0, false
	}
	return c.points[0].Distance(c.points[1]), true
}

// SetLength commits the real-world length of the measured segment and
// computes the scale factor (pixels per unit). Requires exactly two
// placed points and a positive length; otherwise the session state is
// unchanged and ErrInvalidCalibration is returned. On success the session
// returns to idle with the factor committed.
func (c *Calibrator) SetLength(length float64) (float64, error) {
	if len(c.points) != 2 {
		return 0, fmt.Errorf("set length with %d points: %w", len(c.points), ErrInvalidCalibration)
	}
	if length <= 0 {
		return 0, fmt.Errorf("set length %g: %w", length, ErrInvalidCalibration)
	}

	dist, _ := c.PixelDistance()
	c.factor = dist / length
	c.length = length
	c.target = TargetNone
	c.points = nil
	return c.factor, nil
}

// Restore installs a previously committed calibration, e.g. from a saved
// project. Any in-progress session is discarded.
func (c *Calibrator) Restore(factor, length float64) error {
	if factor <= 0 || length <= 0 {
		return fmt.Errorf("restore calibration factor=%g length=%g: %w", factor, length, ErrInvalidCalibration)
	}
	c.target = TargetNone
	c.points = nil
	c.factor = factor
	c.length = length
	return nil
}

// UpdatePoint moves an already placed point, e.g. while the caller drags
// it. The session state is otherwise unchanged.
func (c *Calibrator) UpdatePoint(index int, p geometry.Point2D) bool {
	if index < 0 || index >= len(c.points) {
		return false
	}
	c.points[index] = p
	return true
}

// PointNear returns the index of a placed point within threshold pixels
// of p, for caller-side drag hit testing.
func (c *Calibrator) PointNear(p geometry.Point2D, threshold float64) (int, bool) {
	for i, pt := range c.points {
		if pt.Distance(p) <= threshold {
			return i, true
		}
	}
	return 0, false
}

// Cancel discards the in-progress session. A previously committed factor
// and length are retained.
func (c *Calibrator) Cancel() {
	c.target = TargetNone
	c.points = nil
}

// Reset discards everything including the committed calibration.
func (c *Calibrator) Reset() {
	c.target = TargetNone
	c.points = nil
	c.length = 0
	c.factor = 1.0
}

// Calibrated reports whether a factor has been committed.
func (c *Calibrator) Calibrated() bool {
	return c.length > 0 && c.factor != 1.0
}

// Factor returns the committed scale factor in pixels per unit
// (1.0 when uncalibrated).
func (c *Calibrator) Factor() float64 {
	return c.factor
}

// Length returns the committed real-world length.
func (c *Calibrator) Length() float64 {
	return c.length
}

// StatusMessage returns a human-readable description of the current
// calibration state for caller display.
func (c *Calibrator) StatusMessage() string {
	if !c.Active() {
		if c.Calibrated() {
			return fmt.Sprintf("Scale calibrated: %.1f units", c.length)
		}
		return "No scale calibration"
	}

	switch len(c.points) {
	case 0:
		return "Scale calibration: click first point on known distance"
	case 1:
		return "Scale calibration: click second point"
	default:
		return "Scale calibration: enter real-world distance"
	}
}
