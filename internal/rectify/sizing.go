package rectify

import (
	"fmt"
	"math"

	"doc-dewarp/internal/units"
	"doc-dewarp/pkg/geometry"
)

// Mode selects the output sizing strategy.
type Mode int

const (
	// ModeFull pads the canvas so the whole warped source image fits;
	// nothing is clipped. This is the default.
	ModeFull Mode = iota
	// ModeCrop outputs exactly the requested size; content outside the
	// source quad is discarded.
	ModeCrop
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCrop {
		return "crop"
	}
	return "full"
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "crop":
		return ModeCrop, nil
	}
	return ModeFull, fmt.Errorf("unknown output mode %q", s)
}

// cropDestination builds the destination quad for a W x H output canvas.
func cropDestination(outW, outH int) geometry.Quad {
	w := float64(outW)
	h := float64(outH)
	return geometry.Quad{
		{X: 0, Y: 0},
		{X: w - 1, Y: 0},
		{X: w - 1, Y: h - 1},
		{X: 0, Y: h - 1},
	}
}

// Plan is a resolved warp: the homography to apply and the canvas to
// apply it on.
type Plan struct {
	H       geometry.Homography
	OutW    int
	OutH    int
	OffsetX float64 // full mode: canvas origin in destination space
	OffsetY float64
}

// PlanCrop computes the transform for crop mode: the canvas is exactly
// outW x outH and holds only the quad's content.
func PlanCrop(src geometry.Quad, outW, outH int) (Plan, error) {
	if outW < 1 || outH < 1 {
		return Plan{}, fmt.Errorf("plan crop: invalid output size %dx%d", outW, outH)
	}

	h, err := ComputeHomography(src, cropDestination(outW, outH))
	if err != nil {
		return Plan{}, err
	}
	return Plan{H: h, OutW: outW, OutH: outH}, nil
}

// PlanFull computes the transform for full-image mode. The quad is still
// mapped to a nominal outW x outH rectangle, but the canvas is grown to
// the bounding box of the entire warped source image so no content is
// clipped, at the cost of background padding.
func PlanFull(src geometry.Quad, srcW, srcH, outW, outH int) (Plan, error) {
	if outW < 1 || outH < 1 {
		return Plan{}, fmt.Errorf("plan full: invalid output size %dx%d", outW, outH)
	}

	dst := cropDestination(outW, outH)
	tmp, err := ComputeHomography(src, dst)
	if err != nil {
		return Plan{}, err
	}

	// Map the whole source frame extent through the nominal transform and
	// take its axis-aligned bounding box, floor on minima and ceil on
	// maxima, so the canvas always covers the last pixel row and column.
	w := float64(srcW)
	h := float64(srcH)
	mapped := tmp.ApplyAll([]geometry.Point2D{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	})
	box := geometry.BoundingBox(mapped)

	// Snap away solver noise before rounding so an exact-pixel transform
	// does not grow the canvas by one.
	const eps = 1e-7
	minX := math.Floor(box.X + eps)
	minY := math.Floor(box.Y + eps)
	maxX := math.Ceil(box.X + box.Width - eps)
	maxY := math.Ceil(box.Y + box.Height - eps)

	// Shift the destination so the bounding box starts at the origin.
	origin := geometry.Point2D{X: minX, Y: minY}
	var shifted geometry.Quad
	for i, p := range dst {
		shifted[i] = p.Sub(origin)
	}

	final, err := ComputeHomography(src, shifted)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		H:       final,
		OutW:    int(maxX - minX),
		OutH:    int(maxY - minY),
		OffsetX: minX,
		OffsetY: minY,
	}, nil
}

// EstimateQuadSize suggests real-world output dimensions for a canonical
// quad by averaging its opposing side lengths and converting to the
// spec's unit. Callers typically round and present these as defaults the
// user can override.
func EstimateQuadSize(q geometry.Quad, spec units.Spec, useScale bool) (width, height float64) {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]

	topWidth := tl.Distance(tr)
	bottomWidth := bl.Distance(br)
	leftHeight := tl.Distance(bl)
	rightHeight := tr.Distance(br)

	avgWidthPx := (topWidth + bottomWidth) / 2
	avgHeightPx := (leftHeight + rightHeight) / 2

	return spec.PixelsToUnits(avgWidthPx, useScale), spec.PixelsToUnits(avgHeightPx, useScale)
}
