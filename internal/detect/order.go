package detect

import (
	"sort"

	"doc-dewarp/pkg/geometry"
)

// OrderCorners orders four points into the canonical TL, TR, BR, BL
// sequence. The sort is stable, so ties keep their input order. The
// function is idempotent and must be reapplied after any manual point
// edit before the quad is used downstream.
func OrderCorners(corners geometry.Quad) geometry.Quad {
	sorted := corners.Points()

	// Separate top and bottom pairs by Y.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	topPair := sorted[:2]
	bottomPair := sorted[2:]

	sort.SliceStable(topPair, func(i, j int) bool {
		return topPair[i].X < topPair[j].X
	})
	sort.SliceStable(bottomPair, func(i, j int) bool {
		return bottomPair[i].X < bottomPair[j].X
	})

	return geometry.Quad{
		topPair[0],    // TL
		topPair[1],    // TR
		bottomPair[1], // BR
		bottomPair[0], // BL
	}
}
