package detect

// Params holds tuning parameters for document corner detection.
type Params struct {
	// Gaussian blur kernel size applied before edge detection
	BlurKernel int

	// Median intensity below which the background is treated as dark
	DarkMedianCutoff float64

	// Fixed Canny thresholds for dark backgrounds
	DarkLowThreshold  float32
	DarkHighThreshold float32

	// Adaptive Canny threshold scales for light backgrounds,
	// applied to the median intensity and clamped to [0,255]
	AdaptiveLowScale  float64
	AdaptiveHighScale float64

	// Dilation iterations after edge detection
	DilateIterations int

	// Weak-edge fallback: triggered when the edge pixel ratio is below
	// WeakEdgeRatio and fewer than WeakEdgeMinContours were found
	WeakEdgeRatio            float64
	WeakEdgeMinContours      int
	FallbackLowThreshold     float32
	FallbackHighThreshold    float32
	FallbackDilateIterations int

	// Quadrilateral selection
	MaxPrimaryContours int       // contours scanned in the primary pass
	EpsilonFactors     []float64 // polygon approximation factors x perimeter
	MinAreaFraction    float64   // quad must cover more than this fraction of the image
	MaxAreaFraction    float64   // and less than this fraction
	BorderFraction     float64   // frame-rejection threshold as fraction of min(w,h)

	// Partial-document fallback selection
	MaxFallbackContours     int
	FallbackMinAreaFraction float64
	EdgeMarginPx            float64 // vertex counts as touching the image edge within this
	CornerMarginPx          float64 // corner-supplementation bucket margin
}

// DefaultParams returns detection parameters tuned for photographed
// documents on both light and dark backgrounds.
func DefaultParams() Params {
	return Params{
		BlurKernel: 5,

		// Median-based threshold selection. Dark backgrounds (book on a
		// table) respond better to fixed thresholds than to 0.66/1.33
		// scaling of a low median.
		DarkMedianCutoff:  100,
		DarkLowThreshold:  50,
		DarkHighThreshold: 150,
		AdaptiveLowScale:  0.66,
		AdaptiveHighScale: 1.33,

		DilateIterations: 1,

		WeakEdgeRatio:            0.05,
		WeakEdgeMinContours:      10,
		FallbackLowThreshold:     30,
		FallbackHighThreshold:    100,
		FallbackDilateIterations: 2,

		MaxPrimaryContours: 20,
		EpsilonFactors:     []float64{0.02, 0.03, 0.04, 0.05},
		MinAreaFraction:    0.05,
		MaxAreaFraction:    0.95,
		BorderFraction:     0.02,

		MaxFallbackContours:     10,
		FallbackMinAreaFraction: 0.20,
		EdgeMarginPx:            5,
		CornerMarginPx:          10,
	}
}

// defaultEpsilonFactor is used when a hand-built Params carries no
// approximation ladder at all.
const defaultEpsilonFactor = 0.02

// epsilonLadder returns the polygon approximation factors, falling back
// to a single default entry when none are configured.
func (p Params) epsilonLadder() []float64 {
	if len(p.EpsilonFactors) == 0 {
		return []float64{defaultEpsilonFactor}
	}
	return p.EpsilonFactors
}

// WithBlurKernel returns a copy of params with a different blur kernel.
// The kernel must be odd; even values are bumped up.
func (p Params) WithBlurKernel(k int) Params {
	if k < 1 {
		k = 1
	}
	if k%2 == 0 {
		k++
	}
	p.BlurKernel = k
	return p
}

// WithAreaBounds returns a copy of params with custom quad area bounds,
// expressed as fractions of the image area.
func (p Params) WithAreaBounds(minFrac, maxFrac float64) Params {
	p.MinAreaFraction = minFrac
	p.MaxAreaFraction = maxFrac
	return p
}

// WithCannyThresholds returns a copy of params with fixed Canny thresholds
// used for dark backgrounds.
func (p Params) WithCannyThresholds(low, high float32) Params {
	p.DarkLowThreshold = low
	p.DarkHighThreshold = high
	return p
}

// WithMaxContours returns a copy of params with a different primary-pass
// contour scan limit.
func (p Params) WithMaxContours(n int) Params {
	if n < 1 {
		n = 1
	}
	p.MaxPrimaryContours = n
	return p
}
