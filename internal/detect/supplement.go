package detect

import (
	"doc-dewarp/pkg/geometry"
)

// SupplementCorners completes a partial document outline with image
// corners. Documents that extend past the frame lose corners to the crop;
// each approximation vertex within margin pixels of an image corner claims
// that corner, and every unclaimed corner is filled in with the exact
// image extreme. Returns the completed point set and true only when the
// result has exactly four points.
func SupplementCorners(points []geometry.Point2D, width, height int, margin float64) ([]geometry.Point2D, bool) {
	w := float64(width)
	h := float64(height)

	var tl, tr, bl, br bool
	for _, p := range points {
		switch {
		case p.X < margin && p.Y < margin:
			tl = true
		case p.X > w-margin && p.Y < margin:
			tr = true
		case p.X < margin && p.Y > h-margin:
			bl = true
		case p.X > w-margin && p.Y > h-margin:
			br = true
		}
	}

	result := make([]geometry.Point2D, len(points), len(points)+4)
	copy(result, points)

	if !tl {
		result = append(result, geometry.Point2D{X: 0, Y: 0})
	}
	if !tr {
		result = append(result, geometry.Point2D{X: w - 1, Y: 0})
	}
	if !bl {
		result = append(result, geometry.Point2D{X: 0, Y: h - 1})
	}
	if !br {
		result = append(result, geometry.Point2D{X: w - 1, Y: h - 1})
	}

	if len(result) != 4 {
		return nil, false
	}
	return result, true
}
