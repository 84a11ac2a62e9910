package rectify

import (
	"math"
	"testing"

	"doc-dewarp/internal/units"
	"doc-dewarp/pkg/geometry"
)

func TestPlanCrop_CanvasMatchesRequest(t *testing.T) {
	src := geometry.Quad{{X: 50, Y: 40}, {X: 450, Y: 60}, {X: 430, Y: 360}, {X: 70, Y: 340}}

	plan, err := PlanCrop(src, 300, 200)
	if err != nil {
		t.Fatalf("PlanCrop() error: %v", err)
	}
	if plan.OutW != 300 || plan.OutH != 200 {
		t.Errorf("canvas %dx%d, want 300x200", plan.OutW, plan.OutH)
	}

	// The quad corners must land on the canvas corners.
	wantDst := cropDestination(300, 200)
	for i := range src {
		got := plan.H.Apply(src[i])
		if got.Distance(wantDst[i]) > 1e-6 {
			t.Errorf("corner %d maps to %v, want %v", i, got, wantDst[i])
		}
	}
}

func TestPlanFull_CanvasCoversWholeSource(t *testing.T) {
	const srcW, srcH = 1000, 800
	src := geometry.Quad{{X: 200, Y: 150}, {X: 800, Y: 180}, {X: 780, Y: 650}, {X: 220, Y: 620}}

	crop, err := PlanCrop(src, 400, 300)
	if err != nil {
		t.Fatalf("PlanCrop() error: %v", err)
	}
	full, err := PlanFull(src, srcW, srcH, 400, 300)
	if err != nil {
		t.Fatalf("PlanFull() error: %v", err)
	}

	if full.OutW < crop.OutW || full.OutH < crop.OutH {
		t.Errorf("full canvas %dx%d smaller than crop canvas %dx%d",
			full.OutW, full.OutH, crop.OutW, crop.OutH)
	}

	// Every source frame corner must land inside the full canvas.
	frame := []geometry.Point2D{
		{X: 0, Y: 0}, {X: srcW - 1, Y: 0}, {X: srcW - 1, Y: srcH - 1}, {X: 0, Y: srcH - 1},
	}
	for _, p := range frame {
		m := full.H.Apply(p)
		if m.X < -1 || m.Y < -1 || m.X > float64(full.OutW)+1 || m.Y > float64(full.OutH)+1 {
			t.Errorf("frame corner %v maps to %v, outside canvas %dx%d",
				p, m, full.OutW, full.OutH)
		}
	}
}

func TestPlanFull_IdentityQuadKeepsSourceSize(t *testing.T) {
	// A quad covering the whole frame mapped to its own size should give
	// a canvas of (nearly) the source size with no offset.
	const w, h = 640, 480
	src := geometry.Quad{{X: 0, Y: 0}, {X: w - 1, Y: 0}, {X: w - 1, Y: h - 1}, {X: 0, Y: h - 1}}

	plan, err := PlanFull(src, w, h, w, h)
	if err != nil {
		t.Fatalf("PlanFull() error: %v", err)
	}
	if plan.OutW != w || plan.OutH != h {
		t.Errorf("canvas %dx%d, want %dx%d", plan.OutW, plan.OutH, w, h)
	}
	if plan.OffsetX != 0 || plan.OffsetY != 0 {
		t.Errorf("offset (%g,%g), want (0,0)", plan.OffsetX, plan.OffsetY)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("crop"); err != nil || m != ModeCrop {
		t.Errorf("ParseMode(crop) = %v, %v", m, err)
	}
	if m, err := ParseMode("full"); err != nil || m != ModeFull {
		t.Errorf("ParseMode(full) = %v, %v", m, err)
	}
	if _, err := ParseMode("stretch"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEstimateQuadSize(t *testing.T) {
	// Axis-aligned 600x300 px quad at 300 DPI: 2x1 inches, 50.8x25.4 mm.
	q := geometry.Quad{{X: 0, Y: 0}, {X: 600, Y: 0}, {X: 600, Y: 300}, {X: 0, Y: 300}}

	spec := units.Spec{Unit: units.Inch, DPI: 300, ScaleFactor: 1.0}
	w, h := EstimateQuadSize(q, spec, false)
	if math.Abs(w-2.0) > 1e-9 || math.Abs(h-1.0) > 1e-9 {
		t.Errorf("inch estimate %gx%g, want 2x1", w, h)
	}

	spec.Unit = units.Millimeter
	w, h = EstimateQuadSize(q, spec, false)
	if math.Abs(w-50.8) > 1e-9 || math.Abs(h-25.4) > 1e-9 {
		t.Errorf("mm estimate %gx%g, want 50.8x25.4", w, h)
	}
}

func TestEstimateQuadSize_UsesCalibration(t *testing.T) {
	q := geometry.Quad{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 0, Y: 100}}

	// 10 px per unit: 200 px wide -> 20 units, regardless of DPI.
	spec := units.Spec{Unit: units.Millimeter, DPI: 300, ScaleFactor: 10.0}
	w, h := EstimateQuadSize(q, spec, true)
	if math.Abs(w-20.0) > 1e-9 || math.Abs(h-10.0) > 1e-9 {
		t.Errorf("calibrated estimate %gx%g, want 20x10", w, h)
	}
}
