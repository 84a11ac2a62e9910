package detect

import (
	"image"
	"sort"

	"doc-dewarp/pkg/geometry"

	"gocv.io/x/gocv"
)

// Contour is a traced boundary from the edge map with its derived
// attributes. Points are in image pixel space.
type Contour struct {
	Points    []geometry.Point2D
	Area      float64
	Perimeter float64
}

// contoursFromVector converts gocv contours into Contour values sorted by
// enclosed area, largest first.
func contoursFromVector(vec gocv.PointsVector) []Contour {
	out := make([]Contour, 0, vec.Size())
	for i := 0; i < vec.Size(); i++ {
		pv := vec.At(i)
		c := Contour{
			Points:    make([]geometry.Point2D, pv.Size()),
			Area:      gocv.ContourArea(pv),
			Perimeter: gocv.ArcLength(pv, true),
		}
		for j := 0; j < pv.Size(); j++ {
			pt := pv.At(j)
			c.Points[j] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Area > out[j].Area
	})
	return out
}

// approxPolygon approximates the contour with a polygon whose maximum
// deviation from the contour is epsilon pixels.
func approxPolygon(c Contour, epsilon float64) []geometry.Point2D {
	pts := make([]image.Point, len(c.Points))
	for i, p := range c.Points {
		pts[i] = image.Point{X: int(p.X), Y: int(p.Y)}
	}

	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()

	out := make([]geometry.Point2D, approx.Size())
	for i := 0; i < approx.Size(); i++ {
		pt := approx.At(i)
		out[i] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return out
}
