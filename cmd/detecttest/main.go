// Command detecttest runs the corner detection pipeline on an image and
// prints per-stage diagnostics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"doc-dewarp/internal/detect"
	"doc-dewarp/internal/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func main() {
	input := flag.String("i", "", "Path to input image")
	blur := flag.Int("blur", 5, "Gaussian blur kernel size (odd)")
	maxContours := flag.Int("max-contours", 20, "Contours scanned in the primary pass")
	minArea := flag.Float64("min-area", 0.05, "Minimum quad area as fraction of image")
	maxArea := flag.Float64("max-area", 0.95, "Maximum quad area as fraction of image")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: detecttest -i <image> [-blur N] [-max-contours N]")
		os.Exit(1)
	}

	f, err := os.Open(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", *input, err)
		os.Exit(1)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode %s: %v\n", *input, err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("=== Input: %s (%dx%d) ===\n", *input, bounds.Dx(), bounds.Dy())

	params := detect.DefaultParams().
		WithBlurKernel(*blur).
		WithMaxContours(*maxContours).
		WithAreaBounds(*minArea, *maxArea)

	mat, err := imaging.ToMat(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	defer mat.Close()

	fmt.Printf("\n=== Edge analysis ===\n")
	contours, info := detect.ExtractContours(mat, params)
	fmt.Printf("Median intensity: %.0f\n", info.Median)
	fmt.Printf("Canny thresholds: %.0f - %.0f\n", info.LowThreshold, info.HighThreshold)
	fmt.Printf("Edge pixel ratio: %.4f\n", info.EdgeRatio)
	fmt.Printf("Weak-edge fallback: %v\n", info.UsedFallback)
	fmt.Printf("Contours: %d\n", len(contours))

	imgArea := float64(bounds.Dx() * bounds.Dy())
	for i, c := range contours {
		if i >= 5 {
			break
		}
		fmt.Printf("  #%d: %d points, area %.0f px (%.1f%%), perimeter %.0f px\n",
			i+1, len(c.Points), c.Area, 100*c.Area/imgArea, c.Perimeter)
	}

	fmt.Printf("\n=== Quadrilateral selection ===\n")
	result, err := detect.DetectDocument(mat, params)
	if err != nil {
		if errors.Is(err, detect.ErrDetectionFailed) {
			fmt.Println("No document outline found - manual corner entry required")
			return
		}
		fmt.Fprintf(os.Stderr, "Detection error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Confidence: %.1f%% of image area\n", result.Confidence*100)
	fmt.Printf("Supplemented from image corners: %v\n", result.Supplemented)
	for i, name := range []string{"TL", "TR", "BR", "BL"} {
		fmt.Printf("  %s: (%.1f, %.1f)\n", name, result.Corners[i].X, result.Corners[i].Y)
	}
}
