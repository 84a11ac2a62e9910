package detect

import (
	"testing"

	"doc-dewarp/pkg/geometry"
)

func TestCountFrameCorners(t *testing.T) {
	const w, h = 1000, 800 // threshold = 0.02 * 800 = 16

	tests := []struct {
		name   string
		points []geometry.Point2D
		want   int
	}{
		{
			"full frame",
			[]geometry.Point2D{{X: 1, Y: 1}, {X: 998, Y: 2}, {X: 997, Y: 797}, {X: 2, Y: 798}},
			4,
		},
		{
			"document well inside",
			[]geometry.Point2D{{X: 100, Y: 100}, {X: 900, Y: 120}, {X: 880, Y: 700}, {X: 120, Y: 680}},
			0,
		},
		{
			"touching one edge only does not count",
			[]geometry.Point2D{{X: 1, Y: 400}, {X: 500, Y: 1}, {X: 998, Y: 400}, {X: 500, Y: 798}},
			0,
		},
		{
			"two corners pinned",
			[]geometry.Point2D{{X: 2, Y: 3}, {X: 997, Y: 2}, {X: 800, Y: 600}, {X: 200, Y: 580}},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countFrameCorners(tt.points, w, h, 0.02); got != tt.want {
				t.Errorf("countFrameCorners() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnyNearImageEdge(t *testing.T) {
	pts := []geometry.Point2D{{X: 500, Y: 400}, {X: 300, Y: 200}}
	if anyNearImageEdge(pts, 1000, 800, 5) {
		t.Error("interior points reported near edge")
	}

	pts = append(pts, geometry.Point2D{X: 3, Y: 400})
	if !anyNearImageEdge(pts, 1000, 800, 5) {
		t.Error("edge-touching point not detected")
	}
}

func TestSelectQuad_EmptyInput(t *testing.T) {
	if _, ok := selectQuad(nil, 1000, 800, DefaultParams()); ok {
		t.Error("expected no selection from empty contour list")
	}
}

func TestSelectQuad_RejectsFrameAcceptsDocument(t *testing.T) {
	const w, h = 1000, 800
	p := DefaultParams()

	frame := rectContour(1, 1, 998, 798)
	document := rectContour(150, 100, 850, 700)

	// Frame sorts first (larger area) but must be rejected; the interior
	// document wins.
	sel, ok := selectQuad([]Contour{frame, document}, w, h, p)
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.supplemented {
		t.Error("primary pass should not supplement")
	}

	got := sel.corners
	want := geometry.Quad{{X: 150, Y: 100}, {X: 850, Y: 100}, {X: 850, Y: 700}, {X: 150, Y: 700}}
	for i := range want {
		if got[i].Distance(want[i]) > 3 {
			t.Errorf("corner %d: got %v, want near %v", i, got[i], want[i])
		}
	}
}

func TestSelectQuad_RejectsConcaveQuad(t *testing.T) {
	// A dart-shaped 4-gon of plausible size: approximation noise, not a
	// document.
	dart := []geometry.Point2D{
		{X: 200, Y: 50}, {X: 350, Y: 350}, {X: 200, Y: 250}, {X: 50, Y: 350},
	}
	contour := Contour{
		Points:    dart,
		Area:      geometry.Area(dart),
		Perimeter: geometry.Perimeter(dart),
	}
	if _, ok := selectQuad([]Contour{contour}, 400, 400, DefaultParams()); ok {
		t.Error("expected rejection of a concave quad")
	}
}

func TestSelectPartial_AreaUsesCanonicalOrder(t *testing.T) {
	const w, h = 400, 400

	// Triangle covering the top-left half: corners near TL, TR and BL,
	// with BR supplemented. In append order the polygon self-intersects,
	// so the area must come from the ordered quad instead.
	tri := []geometry.Point2D{
		{X: 2, Y: 2}, {X: 397, Y: 2}, {X: 2, Y: 397},
	}
	contour := Contour{
		Points:    tri,
		Area:      geometry.Area(tri),
		Perimeter: geometry.Perimeter(tri),
	}

	sel, ok := selectPartial([]Contour{contour}, w, h, float64(w*h), DefaultParams())
	if !ok {
		t.Fatal("expected a supplemented selection")
	}
	if !sel.supplemented {
		t.Error("selection not flagged as supplemented")
	}
	if sel.area < 0.5*float64(w*h) {
		t.Errorf("area = %.0f, want most of the %d px image", sel.area, w*h)
	}
	if sel.corners[2].Distance(geometry.Point2D{X: 399, Y: 399}) > 1 {
		t.Errorf("BR corner = %v, want the supplemented image extreme", sel.corners[2])
	}
}

func TestSelectQuad_EmptyEpsilonLadder(t *testing.T) {
	p := DefaultParams()
	p.EpsilonFactors = nil

	document := rectContour(150, 100, 850, 700)
	sel, ok := selectQuad([]Contour{document}, 1000, 800, p)
	if !ok {
		t.Fatal("expected a selection with the default epsilon fallback")
	}
	if sel.corners[0].Distance(geometry.Point2D{X: 150, Y: 100}) > 3 {
		t.Errorf("TL corner = %v, want near (150,100)", sel.corners[0])
	}
}

func TestSelectQuad_TooSmallRejected(t *testing.T) {
	// 2% of the image area is below the 5% floor.
	tiny := rectContour(100, 100, 240, 210)
	if _, ok := selectQuad([]Contour{tiny}, 1000, 800, DefaultParams()); ok {
		t.Error("expected rejection of a sub-threshold quad")
	}
}

// rectContour builds an axis-aligned rectangular contour from corner
// coordinates, dense enough for polygon approximation.
func rectContour(x0, y0, x1, y1 float64) Contour {
	points := []geometry.Point2D{
		{X: x0, Y: y0}, {X: (x0 + x1) / 2, Y: y0},
		{X: x1, Y: y0}, {X: x1, Y: (y0 + y1) / 2},
		{X: x1, Y: y1}, {X: (x0 + x1) / 2, Y: y1},
		{X: x0, Y: y1}, {X: x0, Y: (y0 + y1) / 2},
	}
	return Contour{
		Points:    points,
		Area:      geometry.Area(points),
		Perimeter: geometry.Perimeter(points),
	}
}
