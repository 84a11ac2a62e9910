package rectify

import (
	"image"
	"image/color"
	"testing"

	"doc-dewarp/pkg/geometry"

	"gocv.io/x/gocv"
)

// colorBlock paints a filled rectangle of the given BGR values.
func colorBlock(mat *gocv.Mat, rect image.Rectangle, c color.RGBA) {
	gocv.Rectangle(mat, rect, c, -1)
}

func TestRectify_CropReproducesAxisAlignedRegion(t *testing.T) {
	// Source: a 200x100 red block at (50,40) on black.
	src := gocv.NewMatWithSize(300, 400, gocv.MatTypeCV8UC3)
	defer src.Close()
	red := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorBlock(&src, image.Rect(50, 40, 250, 140), red)

	quad := geometry.Quad{
		{X: 50, Y: 40}, {X: 249, Y: 40}, {X: 249, Y: 139}, {X: 50, Y: 139},
	}

	out, plan, err := Rectify(src, quad, 200, 100, ModeCrop, color.RGBA{A: 255})
	if err != nil {
		t.Fatalf("Rectify() error: %v", err)
	}
	defer out.Close()

	if plan.OutW != 200 || plan.OutH != 100 {
		t.Fatalf("canvas %dx%d, want 200x100", plan.OutW, plan.OutH)
	}

	// Interior pixels of the output must be the block color within
	// interpolation tolerance.
	probes := []image.Point{{X: 10, Y: 10}, {X: 100, Y: 50}, {X: 190, Y: 90}}
	for _, p := range probes {
		b := out.GetUCharAt(p.Y, p.X*3+0)
		g := out.GetUCharAt(p.Y, p.X*3+1)
		r := out.GetUCharAt(p.Y, p.X*3+2)
		if absDiff(r, 200) > 10 || absDiff(g, 30) > 10 || absDiff(b, 30) > 10 {
			t.Errorf("pixel %v: got BGR(%d,%d,%d), want near (30,30,200)", p, b, g, r)
		}
	}
}

func TestRectify_CropOneInchAt300DPIIs300Pixels(t *testing.T) {
	src := gocv.NewMatWithSize(500, 500, gocv.MatTypeCV8UC3)
	defer src.Close()

	quad := geometry.Quad{
		{X: 100, Y: 100}, {X: 400, Y: 110}, {X: 390, Y: 420}, {X: 110, Y: 410},
	}

	// 1 inch at 300 DPI converts to exactly 300 px; crop mode must honor
	// it exactly.
	out, plan, err := Rectify(src, quad, 300, 300, ModeCrop, color.RGBA{A: 255})
	if err != nil {
		t.Fatalf("Rectify() error: %v", err)
	}
	defer out.Close()

	if plan.OutW != 300 || out.Cols() != 300 {
		t.Errorf("output width %d (plan %d), want 300", out.Cols(), plan.OutW)
	}
}

func TestRectify_FullModeKeepsBackgroundFill(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()
	colorBlock(&src, image.Rect(0, 0, 200, 200), color.RGBA{R: 120, G: 120, B: 120, A: 255})

	// A skewed quad: straightening it warps the rectangular source frame
	// into a non-rectangular quadrilateral, so the bounding-box canvas
	// has background-filled corners.
	quad := geometry.Quad{
		{X: 60, Y: 60}, {X: 140, Y: 75}, {X: 130, Y: 140}, {X: 65, Y: 130},
	}
	bg := color.RGBA{R: 10, G: 200, B: 10, A: 255}

	out, plan, err := Rectify(src, quad, 80, 80, ModeFull, bg)
	if err != nil {
		t.Fatalf("Rectify() error: %v", err)
	}
	defer out.Close()

	if plan.OutW <= 80 || plan.OutH <= 80 {
		t.Fatalf("full canvas %dx%d, want larger than the 80x80 quad", plan.OutW, plan.OutH)
	}

	// At least one canvas corner lies outside the warped source and
	// carries the background fill.
	corners := []image.Point{
		{X: 0, Y: 0},
		{X: plan.OutW - 1, Y: 0},
		{X: plan.OutW - 1, Y: plan.OutH - 1},
		{X: 0, Y: plan.OutH - 1},
	}
	found := false
	for _, p := range corners {
		b := out.GetUCharAt(p.Y, p.X*3+0)
		g := out.GetUCharAt(p.Y, p.X*3+1)
		r := out.GetUCharAt(p.Y, p.X*3+2)
		if absDiff(r, 10) <= 5 && absDiff(g, 200) <= 5 && absDiff(b, 10) <= 5 {
			found = true
			break
		}
	}
	if !found {
		t.Error("no canvas corner carries the background fill")
	}
}

func TestRectify_DegenerateQuadLeavesNoResult(t *testing.T) {
	src := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer src.Close()

	quad := geometry.Quad{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 99, Y: 0}, {X: 0, Y: 99},
	}
	if _, _, err := Rectify(src, quad, 100, 100, ModeCrop, color.RGBA{A: 255}); err == nil {
		t.Fatal("expected an error for a degenerate quad")
	}
}

func absDiff(a uint8, b int) int {
	d := int(a) - b
	if d < 0 {
		return -d
	}
	return d
}
