package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Rotate rotates an image by 90, 180 or 270 degrees clockwise. Any other
// angle returns a clone of the input.
func Rotate(img gocv.Mat, degrees int) gocv.Mat {
	var code gocv.RotateFlag
	switch degrees {
	case 90:
		code = gocv.Rotate90Clockwise
	case 180:
		code = gocv.Rotate180Clockwise
	case 270:
		code = gocv.Rotate90CounterClockwise
	default:
		return img.Clone()
	}

	dst := gocv.NewMat()
	gocv.Rotate(img, &dst, code)
	return dst
}

// RotateBy rotates an image by an arbitrary angle in degrees clockwise.
// The canvas expands to hold the whole rotated image; uncovered areas are
// filled with the background color.
func RotateBy(img gocv.Mat, degrees float64, background color.RGBA) gocv.Mat {
	w := float64(img.Cols())
	h := float64(img.Rows())

	// OpenCV's rotation matrix treats positive angles as counter-clockwise.
	center := image.Point{X: img.Cols() / 2, Y: img.Rows() / 2}
	m := gocv.GetRotationMatrix2D(center, -degrees, 1.0)
	defer m.Close()

	rad := degrees * math.Pi / 180
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	outW := int(math.Ceil(w*cos + h*sin))
	outH := int(math.Ceil(w*sin + h*cos))

	// Re-center the rotated content on the expanded canvas.
	m.SetDoubleAt(0, 2, m.GetDoubleAt(0, 2)+float64(outW)/2-w/2)
	m.SetDoubleAt(1, 2, m.GetDoubleAt(1, 2)+float64(outH)/2-h/2)

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &dst, m, image.Point{X: outW, Y: outH},
		gocv.InterpolationLinear, gocv.BorderConstant, background)
	return dst
}

// FlipHorizontal mirrors an image around the vertical axis.
func FlipHorizontal(img gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(img, &dst, 1)
	return dst
}

// FlipVertical mirrors an image around the horizontal axis.
func FlipVertical(img gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(img, &dst, 0)
	return dst
}

// RotateGoImage rotates a decoded Go image clockwise, converting through
// a Mat and back. Multiples of 90 degrees rotate losslessly; other angles
// expand the canvas and pad with black.
func RotateGoImage(img image.Image, degrees int) (image.Image, error) {
	deg := ((degrees % 360) + 360) % 360
	if deg == 0 {
		return img, nil
	}

	mat, err := ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("rotate image: %w", err)
	}
	defer mat.Close()

	var rotated gocv.Mat
	if deg%90 == 0 {
		rotated = Rotate(mat, deg)
	} else {
		rotated = RotateBy(mat, float64(deg), color.RGBA{A: 255})
	}
	defer rotated.Close()

	out, err := ToImage(rotated)
	if err != nil {
		return nil, fmt.Errorf("rotate image: %w", err)
	}
	return out, nil
}

// FlipGoImage mirrors a decoded Go image. axis is "h" for horizontal or
// "v" for vertical.
func FlipGoImage(img image.Image, axis string) (image.Image, error) {
	mat, err := ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("flip image: %w", err)
	}
	defer mat.Close()

	var flipped gocv.Mat
	switch axis {
	case "h":
		flipped = FlipHorizontal(mat)
	case "v":
		flipped = FlipVertical(mat)
	default:
		return nil, fmt.Errorf("flip image: unknown axis %q", axis)
	}
	defer flipped.Close()

	out, err := ToImage(flipped)
	if err != nil {
		return nil, fmt.Errorf("flip image: %w", err)
	}
	return out, nil
}
