package detect

import (
	"doc-dewarp/pkg/geometry"
)

// selectResult carries the chosen quad plus how it was found.
type selectResult struct {
	corners      geometry.Quad
	area         float64
	supplemented bool
}

// selectQuad picks the best 4-point document outline from the ranked
// contours. The primary pass looks for a clean quadrilateral; the
// fallback pass handles documents that touch or extend past the image
// edges by completing a partial outline with image corners.
func selectQuad(contours []Contour, width, height int, p Params) (selectResult, bool) {
	imgArea := float64(width * height)
	if imgArea <= 0 || len(contours) == 0 {
		return selectResult{}, false
	}

	if res, ok := selectPrimary(contours, width, height, imgArea, p); ok {
		return res, true
	}
	return selectPartial(contours, width, height, imgArea, p)
}

// selectPrimary scans the largest contours for a 4-vertex approximation
// of plausible size, retrying with progressively coarser epsilon values.
func selectPrimary(contours []Contour, width, height int, imgArea float64, p Params) (selectResult, bool) {
	minArea := p.MinAreaFraction * imgArea
	maxArea := p.MaxAreaFraction * imgArea

	for _, contour := range topContours(contours, p.MaxPrimaryContours) {
		for _, factor := range p.epsilonLadder() {
			approx := approxPolygon(contour, factor*contour.Perimeter)
			if len(approx) != 4 {
				continue
			}

			area := geometry.Area(approx)
			if area <= minArea || area >= maxArea {
				continue
			}

			// Documents are convex; a concave 4-gon is approximation noise.
			if !geometry.IsConvex(approx) {
				continue
			}

			// A quad whose four corners all sit in the image corners is
			// the frame itself, not a document.
			if countFrameCorners(approx, width, height, p.BorderFraction) >= 4 {
				continue
			}

			quad, _ := geometry.QuadFromPoints(approx)
			return selectResult{corners: OrderCorners(quad), area: area}, true
		}
	}
	return selectResult{}, false
}

// selectPartial handles documents cut off by the frame: a large contour
// with 3-6 vertices and at least one vertex on the image edge gets its
// missing corners supplemented from the image extremes.
func selectPartial(contours []Contour, width, height int, imgArea float64, p Params) (selectResult, bool) {
	for _, contour := range topContours(contours, p.MaxFallbackContours) {
		if contour.Area <= p.FallbackMinAreaFraction*imgArea {
			continue
		}

		approx := approxPolygon(contour, p.epsilonLadder()[0]*contour.Perimeter)
		if len(approx) < 3 || len(approx) > 6 {
			continue
		}
		if !anyNearImageEdge(approx, width, height, p.EdgeMarginPx) {
			continue
		}

		completed, ok := SupplementCorners(approx, width, height, p.CornerMarginPx)
		if !ok {
			continue
		}

		// Measure the area on the canonical ordering; the supplemented
		// append order can self-intersect and understate it.
		quad, _ := geometry.QuadFromPoints(completed)
		ordered := OrderCorners(quad)
		return selectResult{
			corners:      ordered,
			area:         geometry.Area(ordered.Points()),
			supplemented: true,
		}, true
	}
	return selectResult{}, false
}

// countFrameCorners counts vertices that sit at an image corner. A vertex
// qualifies only when it is close to a vertical edge AND a horizontal
// edge; touching a single edge does not count.
func countFrameCorners(points []geometry.Point2D, width, height int, borderFraction float64) int {
	w := float64(width)
	h := float64(height)
	threshold := borderFraction * min(w, h)

	var count int
	for _, pt := range points {
		atVertical := pt.X < threshold || pt.X > w-threshold
		atHorizontal := pt.Y < threshold || pt.Y > h-threshold
		if atVertical && atHorizontal {
			count++
		}
	}
	return count
}

// anyNearImageEdge reports whether any vertex lies within margin pixels
// of any image edge.
func anyNearImageEdge(points []geometry.Point2D, width, height int, margin float64) bool {
	inner := geometry.Rect{
		X:      margin,
		Y:      margin,
		Width:  float64(width) - 2*margin,
		Height: float64(height) - 2*margin,
	}
	for _, pt := range points {
		if !inner.Contains(pt) {
			return true
		}
	}
	return false
}
