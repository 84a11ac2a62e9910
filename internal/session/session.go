// Package session holds the per-document engine state: one image, one
// point set, one calibration session and the active measurement settings.
// A Document serializes its operations internally; callers working on the
// same logical document share one Document, separate documents are
// independent.
package session

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"doc-dewarp/internal/calibrate"
	"doc-dewarp/internal/detect"
	"doc-dewarp/internal/rectify"
	"doc-dewarp/internal/units"
	"doc-dewarp/pkg/geometry"
)

// Document is the engine state for a single photographed document.
type Document struct {
	mu sync.RWMutex

	img    image.Image
	result image.Image

	corners    *geometry.Quad
	spec       units.Spec
	calibrator *calibrate.Calibrator

	// Requested output dimensions in the current unit. When unset the
	// estimate from the quad's side lengths is used.
	width, height float64
	manuallySized bool

	mode       rectify.Mode
	background color.RGBA
}

// New returns an empty document with default settings.
func New() *Document {
	return &Document{
		spec:       units.DefaultSpec(),
		calibrator: calibrate.New(),
		mode:       rectify.ModeFull,
		background: color.RGBA{A: 255},
	}
}

// SetImage installs a new source image, discarding any corners, result
// and size estimate from the previous one.
func (d *Document) SetImage(img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.img = img
	d.result = nil
	d.corners = nil
	d.manuallySized = false
	d.width, d.height = 0, 0
}

// Image returns the current source image.
func (d *Document) Image() image.Image {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.img
}

// Result returns the most recent rectified image, or nil.
func (d *Document) Result() image.Image {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.result
}

// Detect runs automatic corner detection on the source image and stores
// the canonical quad on success.
func (d *Document) Detect(p detect.Params) (*detect.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.img == nil {
		return nil, fmt.Errorf("detect: no image loaded")
	}

	res, err := detect.DetectDocumentFromImage(d.img, p)
	if err != nil {
		return nil, err
	}

	q := res.Corners
	d.corners = &q
	return res, nil
}

// SetCorners installs a manually entered quad. The points may arrive in
// any order (click order, drag order); they are canonicalized before use.
func (d *Document) SetCorners(q geometry.Quad) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ordered := detect.OrderCorners(q)
	d.corners = &ordered
}

// MoveCorner replaces one corner and re-canonicalizes the quad, so the
// stored ordering stays TL,TR,BR,BL through any drag.
func (d *Document) MoveCorner(index int, p geometry.Point2D) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.corners == nil {
		return fmt.Errorf("move corner: no corners set")
	}
	if index < 0 || index > 3 {
		return fmt.Errorf("move corner: index %d out of range", index)
	}

	q := *d.corners
	q[index] = p
	ordered := detect.OrderCorners(q)
	d.corners = &ordered
	return nil
}

// Corners returns the canonical quad, if one is set.
func (d *Document) Corners() (geometry.Quad, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.corners == nil {
		return geometry.Quad{}, false
	}
	return *d.corners, true
}

// ClearCorners discards the current quad.
func (d *Document) ClearCorners() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.corners = nil
}

// Spec returns the active measurement settings.
func (d *Document) Spec() units.Spec {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.spec
}

// SetUnit changes the measurement unit.
func (d *Document) SetUnit(u units.Unit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Unit = u
}

// SetDPI changes the DPI after range validation. Rejected values leave
// the stored DPI untouched.
func (d *Document) SetDPI(dpi int) error {
	if dpi < units.MinDPI || dpi > units.MaxDPI {
		return fmt.Errorf("set dpi %d: %w", dpi, units.ErrInvalidValue)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.DPI = dpi
	return nil
}

// SetDimensions fixes the requested output size in the current unit,
// overriding the quad-based estimate. Non-positive values are rejected
// without mutating the stored dimensions.
func (d *Document) SetDimensions(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("set dimensions %gx%g: %w", width, height, units.ErrInvalidValue)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width = width
	d.height = height
	d.manuallySized = true
	return nil
}

// SetMode selects the output sizing strategy.
func (d *Document) SetMode(m rectify.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = m
}

// Mode returns the active output sizing strategy.
func (d *Document) Mode() rectify.Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// SetBackground sets the fill color for canvas areas outside the warped
// source content.
func (d *Document) SetBackground(c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.background = c
}

// Dimensions returns the output size in the current unit: the manual
// setting when present, otherwise the estimate from the quad's side
// lengths. ok is false when neither is available.
func (d *Document) Dimensions() (width, height float64, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dimensionsLocked()
}

func (d *Document) dimensionsLocked() (float64, float64, bool) {
	if d.manuallySized {
		return d.width, d.height, true
	}
	if d.corners == nil {
		return 0, 0, false
	}
	w, h := rectify.EstimateQuadSize(*d.corners, d.spec, d.spec.Calibrated())
	return w, h, true
}

// Rectify warps the document flat using the stored quad, dimensions,
// unit settings and sizing mode, and retains the result.
func (d *Document) Rectify() (image.Image, rectify.Plan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.img == nil {
		return nil, rectify.Plan{}, fmt.Errorf("rectify: no image loaded")
	}
	if d.corners == nil {
		return nil, rectify.Plan{}, fmt.Errorf("rectify: no corners set")
	}

	width, height, ok := d.dimensionsLocked()
	if !ok {
		return nil, rectify.Plan{}, fmt.Errorf("rectify: no output dimensions")
	}

	outW := d.spec.UnitsToPixels(width)
	outH := d.spec.UnitsToPixels(height)
	if outW < 1 || outH < 1 {
		return nil, rectify.Plan{}, fmt.Errorf("rectify: output size %dx%d px: %w", outW, outH, units.ErrInvalidValue)
	}

	out, plan, err := rectify.RectifyImage(d.img, *d.corners, outW, outH, d.mode, d.background)
	if err != nil {
		return nil, rectify.Plan{}, err
	}
	d.result = out
	return out, plan, nil
}

// StartCalibration begins a two-click scale calibration session.
func (d *Document) StartCalibration(target calibrate.Target) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calibrator.Start(target)
}

// AddCalibrationPoint places a calibration point. Returns true when both
// points are placed and the session awaits a length.
func (d *Document) AddCalibrationPoint(p geometry.Point2D) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calibrator.AddPoint(p)
}

// MoveCalibrationPoint updates a placed calibration point while the
// caller drags it.
func (d *Document) MoveCalibrationPoint(index int, p geometry.Point2D) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calibrator.UpdatePoint(index, p)
}

// CommitCalibration sets the real-world length for the measured segment
// and installs the resulting scale factor into the unit settings.
func (d *Document) CommitCalibration(length float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	factor, err := d.calibrator.SetLength(length)
	if err != nil {
		return 0, err
	}
	d.spec.ScaleFactor = factor
	return factor, nil
}

// RestoreCalibration reinstalls a previously committed scale factor and
// length, e.g. when resuming a saved project.
func (d *Document) RestoreCalibration(factor, length float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.calibrator.Restore(factor, length); err != nil {
		return err
	}
	d.spec.ScaleFactor = factor
	return nil
}

// CancelCalibration discards the in-progress session; a committed factor
// is retained.
func (d *Document) CancelCalibration() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calibrator.Cancel()
}

// CalibrationStatus returns the calibrator's display message.
func (d *Document) CalibrationStatus() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibrator.StatusMessage()
}

// Calibrated reports whether a scale factor is committed.
func (d *Document) Calibrated() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibrator.Calibrated()
}

// CalibrationFactor returns the committed pixels-per-unit factor.
func (d *Document) CalibrationFactor() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibrator.Factor()
}

// CalibrationLength returns the committed real-world length.
func (d *Document) CalibrationLength() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibrator.Length()
}
