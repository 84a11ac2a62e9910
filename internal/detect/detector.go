// Package detect locates the four corners of a photographed document
// using edge detection and contour analysis.
//
// The pipeline handles light documents on dark backgrounds and the
// reverse, rounded or imperfect corners, and documents that touch or
// extend beyond the image edges.
package detect

import (
	"errors"
	"fmt"
	"image"

	"doc-dewarp/internal/imaging"
	"doc-dewarp/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrDetectionFailed is returned when no plausible document outline was
// found. Callers are expected to fall back to manual corner entry.
var ErrDetectionFailed = errors.New("no document outline detected")

// Result holds the detected document corners and detection diagnostics.
type Result struct {
	Corners      geometry.Quad // ordered TL, TR, BR, BL
	Confidence   float64       // quad area / image area
	Supplemented bool          // corners were completed from image extremes
	Edges        EdgeInfo
}

// DetectDocument finds the document outline in a BGR image.
//
// Pipeline:
//  1. Grayscale, blur, median-adaptive Canny, dilate
//  2. External contours sorted by area
//  3. Primary scan for a clean 4-vertex approximation
//  4. Fallback scan for partial outlines touching the frame,
//     completed with image corners
//  5. Canonical TL,TR,BR,BL ordering
func DetectDocument(img gocv.Mat, p Params) (*Result, error) {
	if img.Empty() {
		return nil, fmt.Errorf("detect document: empty image")
	}

	width := img.Cols()
	height := img.Rows()

	contours, info := ExtractContours(img, p)

	sel, ok := selectQuad(contours, width, height, p)
	if !ok {
		return nil, fmt.Errorf("detect document (%d contours): %w", len(contours), ErrDetectionFailed)
	}

	return &Result{
		Corners:      sel.corners,
		Confidence:   sel.area / float64(width*height),
		Supplemented: sel.supplemented,
		Edges:        info,
	}, nil
}

// DetectDocumentFromImage runs detection on a decoded Go image.
func DetectDocumentFromImage(img image.Image, p Params) (*Result, error) {
	mat, err := imaging.ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("detect document: %w", err)
	}
	defer mat.Close()
	return DetectDocument(mat, p)
}
