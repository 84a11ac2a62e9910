package geometry

import (
	"math"
	"testing"
)

func TestAreaAndPerimeter(t *testing.T) {
	rect := []Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 3}, {X: 0, Y: 3}}
	if got := Area(rect); got != 12 {
		t.Errorf("Area = %g, want 12", got)
	}
	if got := Perimeter(rect); got != 14 {
		t.Errorf("Perimeter = %g, want 14", got)
	}

	// Winding direction does not change the absolute area.
	reversed := []Point2D{{X: 0, Y: 3}, {X: 4, Y: 3}, {X: 4, Y: 0}, {X: 0, Y: 0}}
	if Area(rect) != Area(reversed) {
		t.Error("area depends on winding direction")
	}
	if SignedArea(rect) != -SignedArea(reversed) {
		t.Error("signed area should flip with winding direction")
	}
}

func TestCollinear(t *testing.T) {
	if !Collinear(Point2D{X: 0, Y: 0}, Point2D{X: 5, Y: 5}, Point2D{X: 10, Y: 10}, 1e-9) {
		t.Error("points on a line not detected")
	}
	if !Collinear(Point2D{X: 3, Y: 3}, Point2D{X: 3, Y: 3}, Point2D{X: 9, Y: 1}, 1e-9) {
		t.Error("duplicate points not treated as collinear")
	}
	if Collinear(Point2D{X: 0, Y: 0}, Point2D{X: 5, Y: 0}, Point2D{X: 5, Y: 5}, 1e-9) {
		t.Error("right angle flagged as collinear")
	}
}

func TestIsConvex(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if !IsConvex(square) {
		t.Error("square reported as concave")
	}
	triangle := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8}}
	if !IsConvex(triangle) {
		t.Error("triangle reported as concave")
	}

	dart := []Point2D{{X: 5, Y: 0}, {X: 10, Y: 10}, {X: 5, Y: 6}, {X: 0, Y: 10}}
	if IsConvex(dart) {
		t.Error("dart reported as convex")
	}

	if IsConvex(square[:2]) {
		t.Error("two points reported as convex")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}

	for _, p := range []Point2D{{X: 50, Y: 40}, {X: 10, Y: 20}, {X: 110, Y: 70}} {
		if !r.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
	for _, p := range []Point2D{{X: 9, Y: 40}, {X: 111, Y: 40}, {X: 50, Y: 19}, {X: 50, Y: 71}} {
		if r.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestHomography_IdentityAndInverse(t *testing.T) {
	id := IdentityHomography()
	p := Point2D{X: 12.5, Y: -4}
	if got := id.Apply(p); got != p {
		t.Errorf("identity moved %v to %v", p, got)
	}

	// Pure translation with a perspective row.
	h := Homography{1, 0, 10, 0, 1, -5, 0, 0, 1}
	if got := h.Apply(Point2D{X: 1, Y: 2}); got != (Point2D{X: 11, Y: -3}) {
		t.Errorf("translation gave %v", got)
	}

	inv, ok := h.Inverse()
	if !ok {
		t.Fatal("translation not invertible")
	}
	back := inv.Apply(h.Apply(p))
	if back.Distance(p) > 1e-12 {
		t.Errorf("inverse round trip moved %v to %v", p, back)
	}
}

func TestHomography_Compose(t *testing.T) {
	a := Homography{1, 0, 3, 0, 1, 0, 0, 0, 1}  // x += 3
	b := Homography{1, 0, 0, 0, 1, -2, 0, 0, 1} // y -= 2

	p := Point2D{X: 1, Y: 1}
	got := a.Compose(b).Apply(p)
	want := a.Apply(b.Apply(p))
	if got.Distance(want) > 1e-12 {
		t.Errorf("compose order wrong: got %v, want %v", got, want)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: -2, Y: 7}, {X: 5, Y: 1}, {X: 3, Y: 9}}
	box := BoundingBox(pts)
	if box.X != -2 || box.Y != 1 || box.Width != 7 || box.Height != 8 {
		t.Errorf("BoundingBox = %+v", box)
	}
}

func TestQuadFromPoints(t *testing.T) {
	if _, ok := QuadFromPoints([]Point2D{{X: 1, Y: 1}}); ok {
		t.Error("accepted a 1-point quad")
	}
	q, ok := QuadFromPoints([]Point2D{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	if !ok {
		t.Fatal("rejected a 4-point quad")
	}
	if math.Abs(Area(q.Points())-1) > 1e-12 {
		t.Errorf("unit square area = %g", Area(q.Points()))
	}
}
