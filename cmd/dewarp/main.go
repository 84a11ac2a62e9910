// Command dewarp rectifies a photographed document into a flat,
// metrically sized image. Corners come from auto-detection or the
// -corners flag; output size comes from -width/-height or the quad's own
// side lengths.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/jpeg"

	"doc-dewarp/internal/calibrate"
	"doc-dewarp/internal/detect"
	"doc-dewarp/internal/imaging"
	"doc-dewarp/internal/project"
	"doc-dewarp/internal/rectify"
	"doc-dewarp/internal/session"
	"doc-dewarp/internal/units"
	"doc-dewarp/internal/version"
	"doc-dewarp/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func main() {
	input := flag.String("i", "", "Path to input image (png/jpeg/tiff/bmp)")
	output := flag.String("o", "out.png", "Path to output PNG")
	cornersArg := flag.String("corners", "", "Manual corners 'x,y;x,y;x,y;x,y' (any order), skips detection")
	widthArg := flag.String("width", "", "Output width in the selected unit (default: estimated from quad)")
	heightArg := flag.String("height", "", "Output height in the selected unit")
	unitArg := flag.String("unit", "mm", "Measurement unit: px, mm or in")
	dpiArg := flag.String("dpi", "300", "DPI for unit conversion (1-9999)")
	modeArg := flag.String("mode", "full", "Output sizing: 'full' (whole source, padded) or 'crop' (quad only)")
	bgArg := flag.String("bg", "000000", "Background fill color as RRGGBB hex")
	rotateArg := flag.Int("rotate", 0, "Rotate input clockwise by this many degrees before processing")
	flipArg := flag.String("flip", "", "Flip input: 'h' or 'v'")
	scalePts := flag.String("scale-from", "", "Two calibration points 'x1,y1;x2,y2' on the input image")
	scaleLen := flag.String("scale-length", "", "Real-world length between the calibration points")
	projPath := flag.String("project", "", "Save session state to this .dwproj file")
	fromProject := flag.String("from-project", "", "Resume corners and settings from a .dwproj file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	provided := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { provided[f.Name] = true })

	// A resumed project supplies defaults; explicit flags win.
	var proj *project.File
	if *fromProject != "" {
		var err error
		proj, err = project.Load(*fromProject)
		if err != nil {
			fatal("Failed to load project: %v", err)
		}
		if !provided["i"] {
			*input = proj.GetImagePath(*fromProject)
		}
		if !provided["unit"] && proj.Unit != "" {
			*unitArg = proj.Unit
		}
		if !provided["dpi"] && proj.DPI > 0 {
			*dpiArg = strconv.Itoa(proj.DPI)
		}
		if !provided["mode"] && proj.Mode != "" {
			*modeArg = proj.Mode
		}
		if !provided["bg"] && proj.Background != "" {
			*bgArg = proj.Background
		}
	}

	if *input == "" {
		fmt.Println("Usage: dewarp -i <image> [-o out.png] [-corners ...] [-width W -height H] [-unit mm|in|px] [-dpi N] [-mode full|crop]")
		os.Exit(1)
	}

	doc := session.New()

	// Measurement settings first; everything downstream depends on them.
	unit, err := units.ParseUnit(*unitArg)
	if err != nil {
		fatal("Invalid unit: %v", err)
	}
	doc.SetUnit(unit)

	dpi, err := units.ParseDPI(*dpiArg)
	if err != nil {
		fatal("Invalid DPI: %v", err)
	}
	if err := doc.SetDPI(dpi); err != nil {
		fatal("Invalid DPI: %v", err)
	}

	mode, err := rectify.ParseMode(*modeArg)
	if err != nil {
		fatal("Invalid mode: %v", err)
	}
	doc.SetMode(mode)

	bg, err := parseHexColor(*bgArg)
	if err != nil {
		fatal("Invalid background color: %v", err)
	}
	doc.SetBackground(bg)

	fmt.Printf("=== Loading %s ===\n", *input)
	img, err := loadImage(*input)
	if err != nil {
		fatal("Failed to load image: %v", err)
	}

	if *rotateArg != 0 {
		img, err = imaging.RotateGoImage(img, *rotateArg)
		if err != nil {
			fatal("Rotate failed: %v", err)
		}
	}
	if *flipArg != "" {
		img, err = imaging.FlipGoImage(img, *flipArg)
		if err != nil {
			fatal("Flip failed: %v", err)
		}
	}

	bounds := img.Bounds()
	fmt.Printf("Image: %dx%d px\n", bounds.Dx(), bounds.Dy())
	doc.SetImage(img)

	// Calibration: restored from the project, or measured from two points.
	if proj != nil && proj.ScaleFactor > 0 && proj.ScaleFactor != 1 && *scalePts == "" {
		if err := doc.RestoreCalibration(proj.ScaleFactor, proj.ScaleLength); err != nil {
			fatal("Project calibration: %v", err)
		}
		fmt.Printf("Restored scale calibration: %.3f px/%s\n", proj.ScaleFactor, unit)
	}
	if *scalePts != "" {
		if *scaleLen == "" {
			fatal("-scale-from requires -scale-length")
		}
		pts, err := parsePoints(*scalePts, 2)
		if err != nil {
			fatal("Invalid -scale-from: %v", err)
		}
		length, err := units.ParseValue(*scaleLen)
		if err != nil {
			fatal("Invalid -scale-length: %v", err)
		}

		if err := doc.StartCalibration(calibrate.TargetSource); err != nil {
			fatal("Calibration: %v", err)
		}
		doc.AddCalibrationPoint(pts[0])
		doc.AddCalibrationPoint(pts[1])
		factor, err := doc.CommitCalibration(length)
		if err != nil {
			fatal("Calibration: %v", err)
		}
		fmt.Printf("Scale calibrated: %.3f px/%s\n", factor, unit)
	}

	// Corners: manual override, project state, or auto-detection.
	projQuad, projHasQuad := geometry.Quad{}, false
	if proj != nil {
		projQuad, projHasQuad = proj.GetCorners()
	}
	if *cornersArg != "" {
		pts, err := parsePoints(*cornersArg, 4)
		if err != nil {
			fatal("Invalid -corners: %v", err)
		}
		quad, _ := geometry.QuadFromPoints(pts)
		doc.SetCorners(quad)
		fmt.Println("Using manual corners")
	} else if projHasQuad {
		doc.SetCorners(projQuad)
		fmt.Println("Using project corners")
	} else {
		fmt.Printf("\n=== Detecting document ===\n")
		res, err := doc.Detect(detect.DefaultParams())
		if err != nil {
			fatal("Detection failed (%v) - supply -corners manually", err)
		}
		fmt.Printf("Confidence: %.1f%% of image", res.Confidence*100)
		if res.Supplemented {
			fmt.Printf(" (corners completed from image edges)")
		}
		fmt.Println()
	}

	corners, _ := doc.Corners()
	for i, name := range []string{"TL", "TR", "BR", "BL"} {
		fmt.Printf("  %s: (%.1f, %.1f)\n", name, corners[i].X, corners[i].Y)
	}

	// Output dimensions.
	if *widthArg != "" || *heightArg != "" {
		if *widthArg == "" || *heightArg == "" {
			fatal("-width and -height must be given together")
		}
		w, err := units.ParseValue(*widthArg)
		if err != nil {
			fatal("Invalid -width: %v", err)
		}
		h, err := units.ParseValue(*heightArg)
		if err != nil {
			fatal("Invalid -height: %v", err)
		}
		if err := doc.SetDimensions(w, h); err != nil {
			fatal("Invalid dimensions: %v", err)
		}
	} else if proj != nil && proj.Width > 0 && proj.Height > 0 {
		if err := doc.SetDimensions(proj.Width, proj.Height); err != nil {
			fatal("Project dimensions: %v", err)
		}
	}

	w, h, ok := doc.Dimensions()
	if !ok {
		fatal("No output dimensions available")
	}
	fmt.Printf("Output size: %.1f x %.1f %s @ %d DPI\n", w, h, unit, dpi)

	fmt.Printf("\n=== Rectifying (%s mode) ===\n", mode)
	out, plan, err := doc.Rectify()
	if err != nil {
		fatal("Rectify failed: %v", err)
	}
	fmt.Printf("Canvas: %dx%d px\n", plan.OutW, plan.OutH)

	if err := savePNG(*output, out); err != nil {
		fatal("Failed to save output: %v", err)
	}
	fmt.Printf("Saved %s\n", *output)

	if *projPath != "" {
		if err := saveProject(*projPath, *input, *bgArg, doc); err != nil {
			fatal("Failed to save project: %v", err)
		}
		fmt.Printf("Saved project %s\n", *projPath)
	}
}

func saveProject(path, imagePath, background string, doc *session.Document) error {
	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	proj := project.New(name)
	proj.SetImage(path, imagePath)

	if corners, ok := doc.Corners(); ok {
		proj.SetCorners(corners)
	}

	spec := doc.Spec()
	proj.Unit = spec.Unit.String()
	proj.DPI = spec.DPI
	if w, h, ok := doc.Dimensions(); ok {
		proj.Width = w
		proj.Height = h
	}
	if doc.Calibrated() {
		proj.ScaleFactor = doc.CalibrationFactor()
		proj.ScaleLength = doc.CalibrationLength()
	}
	proj.Mode = doc.Mode().String()
	proj.Background = strings.TrimPrefix(background, "#")

	return proj.Save(path)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// parsePoints parses "x,y;x,y;..." into exactly n points.
func parsePoints(s string, n int) ([]geometry.Point2D, error) {
	parts := strings.Split(s, ";")
	if len(parts) != n {
		return nil, fmt.Errorf("got %d points, want %d", len(parts), n)
	}

	pts := make([]geometry.Point2D, n)
	for i, part := range parts {
		coords := strings.Split(strings.TrimSpace(part), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("point %d: want 'x,y', got %q", i, part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d x: %v", i, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d y: %v", i, err)
		}
		pts[i] = geometry.Point2D{X: x, Y: y}
	}
	return pts, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("want RRGGBB, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
