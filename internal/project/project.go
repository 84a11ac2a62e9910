// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doc-dewarp/pkg/geometry"
)

// File represents a dewarp project file (.dwproj). It records everything
// needed to resume a cornering/calibration session: the image, the placed
// corners and the measurement settings.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image path (relative to project file)
	ImagePath string `json:"image,omitempty"`

	// Corner state, canonical TL,TR,BR,BL order
	Corners []geometry.Point2D `json:"corners,omitempty"`

	// Measurement settings
	Unit   string  `json:"unit"`
	DPI    int     `json:"dpi"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Committed scale calibration
	ScaleFactor float64 `json:"scale_factor,omitempty"`
	ScaleLength float64 `json:"scale_length,omitempty"`

	// Output settings
	Mode       string `json:"mode,omitempty"`
	Background string `json:"background,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Unit:     "mm",
		DPI:      300,
		Mode:     "full",
	}
}

// Load loads a project from a .dwproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("load project %s: %w", path, err)
	}

	if proj.Version != 1 {
		return nil, fmt.Errorf("load project %s: unsupported version %d", path, proj.Version)
	}
	if len(proj.Corners) != 0 && len(proj.Corners) != 4 {
		return nil, fmt.Errorf("load project %s: %d corners, want 0 or 4", path, len(proj.Corners))
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the source image.
func (p *File) GetImagePath(projectPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}

// SetCorners stores a canonical quad.
func (p *File) SetCorners(q geometry.Quad) {
	p.Corners = q.Points()
	p.Modified = time.Now()
}

// GetCorners returns the stored quad, if present.
func (p *File) GetCorners() (geometry.Quad, bool) {
	return geometry.QuadFromPoints(p.Corners)
}
