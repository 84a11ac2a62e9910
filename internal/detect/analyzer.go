package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// EdgeInfo records how the edge map for a detection run was produced.
type EdgeInfo struct {
	Median        float64
	LowThreshold  float32
	HighThreshold float32
	EdgeRatio     float64
	ContourCount  int
	UsedFallback  bool
}

// ExtractContours converts the image to grayscale, detects edges with
// median-adaptive Canny thresholds and returns all external contours
// sorted by area, largest first.
//
// A weak-edge fallback reruns detection with lower thresholds and heavier
// dilation when the first pass produced almost no edges (washed-out
// photos, low contrast paper on paper); whichever pass yields more
// contours wins.
func ExtractContours(img gocv.Mat, p Params) ([]Contour, EdgeInfo) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: p.BlurKernel, Y: p.BlurKernel},
		0, 0, gocv.BorderDefault)

	median := medianIntensity(blurred)

	// Dark backgrounds get fixed thresholds, light backgrounds adaptive
	// ones scaled off the median.
	var lower, upper float32
	if median < p.DarkMedianCutoff {
		lower = p.DarkLowThreshold
		upper = p.DarkHighThreshold
	} else {
		lower = float32(clamp(p.AdaptiveLowScale*median, 0, 255))
		upper = float32(clamp(p.AdaptiveHighScale*median, 0, 255))
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	edges := detectEdges(blurred, kernel, lower, upper, p.DilateIterations)
	defer edges.Close()

	contourVec := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contourVec.Close()
	contours := contoursFromVector(contourVec)

	imgArea := float64(img.Cols() * img.Rows())
	edgeRatio := float64(gocv.CountNonZero(edges)) / imgArea

	info := EdgeInfo{
		Median:        median,
		LowThreshold:  lower,
		HighThreshold: upper,
		EdgeRatio:     edgeRatio,
	}

	// Weak-edge fallback pass.
	if edgeRatio < p.WeakEdgeRatio && len(contours) < p.WeakEdgeMinContours {
		edges2 := detectEdges(blurred, kernel,
			p.FallbackLowThreshold, p.FallbackHighThreshold, p.FallbackDilateIterations)
		defer edges2.Close()

		contourVec2 := gocv.FindContours(edges2, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		defer contourVec2.Close()
		contours2 := contoursFromVector(contourVec2)

		if len(contours2) > len(contours) {
			contours = contours2
			info.LowThreshold = p.FallbackLowThreshold
			info.HighThreshold = p.FallbackHighThreshold
			info.EdgeRatio = float64(gocv.CountNonZero(edges2)) / imgArea
			info.UsedFallback = true
		}
	}

	info.ContourCount = len(contours)
	return contours, info
}

// detectEdges runs Canny and dilates the edge map to close small gaps.
func detectEdges(blurred gocv.Mat, kernel gocv.Mat, lower, upper float32, dilateIterations int) gocv.Mat {
	edges := gocv.NewMat()
	gocv.Canny(blurred, &edges, lower, upper)
	for i := 0; i < dilateIterations; i++ {
		gocv.Dilate(edges, &edges, kernel)
	}
	return edges
}

// medianIntensity computes the median pixel value of a single-channel
// image. Even pixel counts average the two central values, so threshold
// selection behaves the same on either side of an exact split.
func medianIntensity(gray gocv.Mat) float64 {
	rows := gray.Rows()
	cols := gray.Cols()
	total := rows * cols
	if total == 0 {
		return 0
	}

	var hist [256]int
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			hist[gray.GetUCharAt(y, x)]++
		}
	}

	loIdx := (total - 1) / 2
	hiIdx := total / 2
	lo, hi := -1, -1
	var seen int
	for v := 0; v < 256; v++ {
		seen += hist[v]
		if lo < 0 && seen > loIdx {
			lo = v
		}
		if seen > hiIdx {
			hi = v
			break
		}
	}
	if hi < 0 {
		return 255
	}
	return (float64(lo) + float64(hi)) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// topContours returns the first n contours (they are already sorted by
// area descending).
func topContours(contours []Contour, n int) []Contour {
	if len(contours) < n {
		n = len(contours)
	}
	return contours[:n]
}
