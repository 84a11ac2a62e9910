package rectify

import (
	"fmt"
	"image"
	"image/color"

	"doc-dewarp/internal/imaging"
	"doc-dewarp/pkg/geometry"

	"gocv.io/x/gocv"
)

// Warp applies a homography to an image. Destination pixels are
// inverse-mapped and bilinearly sampled from the source; coordinates that
// fall outside the source are filled with the background color.
func Warp(src gocv.Mat, h geometry.Homography, outW, outH int, background color.RGBA) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r*3+c])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(src, &dst, m, image.Point{X: outW, Y: outH},
		gocv.InterpolationLinear, gocv.BorderConstant, background)
	return dst
}

// Rectify warps the source quad flat onto an output canvas. outW and outH
// are the nominal quad size in pixels (already converted from real-world
// units by the caller); the actual canvas matches them exactly in crop
// mode and grows to hold the whole warped source in full mode.
func Rectify(src gocv.Mat, quad geometry.Quad, outW, outH int, mode Mode, background color.RGBA) (gocv.Mat, Plan, error) {
	if src.Empty() {
		return gocv.Mat{}, Plan{}, fmt.Errorf("rectify: empty image")
	}

	var plan Plan
	var err error
	switch mode {
	case ModeCrop:
		plan, err = PlanCrop(quad, outW, outH)
	default:
		plan, err = PlanFull(quad, src.Cols(), src.Rows(), outW, outH)
	}
	if err != nil {
		return gocv.Mat{}, Plan{}, fmt.Errorf("rectify: %w", err)
	}

	return Warp(src, plan.H, plan.OutW, plan.OutH, background), plan, nil
}

// RectifyImage is the Go-image convenience wrapper around Rectify.
func RectifyImage(img image.Image, quad geometry.Quad, outW, outH int, mode Mode, background color.RGBA) (image.Image, Plan, error) {
	mat, err := imaging.ToMat(img)
	if err != nil {
		return nil, Plan{}, fmt.Errorf("rectify: %w", err)
	}
	defer mat.Close()

	warped, plan, err := Rectify(mat, quad, outW, outH, mode, background)
	if err != nil {
		return nil, Plan{}, err
	}
	defer warped.Close()

	out, err := imaging.ToImage(warped)
	if err != nil {
		return nil, Plan{}, fmt.Errorf("rectify: %w", err)
	}
	return out, plan, nil
}
