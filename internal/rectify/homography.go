// Package rectify computes 4-point perspective transforms and warps
// images through them, with crop and full-canvas output sizing.
package rectify

import (
	"errors"
	"fmt"

	"doc-dewarp/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateQuad is returned when the source quadrilateral cannot
// anchor a perspective transform: three or more of its points are
// collinear or duplicated, so the solve is singular.
var ErrDegenerateQuad = errors.New("degenerate quadrilateral")

// collinearTol is the triangle-area tolerance for the degeneracy check.
const collinearTol = 1e-6

// ComputeHomography solves the 3x3 projective transform mapping each
// src[i] to dst[i]. The system has 8 unknowns with h22 fixed at 1:
//
//	x' = (h00 X + h01 Y + h02) / (h20 X + h21 Y + 1)
//	y' = (h10 X + h11 Y + h12) / (h20 X + h21 Y + 1)
func ComputeHomography(src, dst geometry.Quad) (geometry.Homography, error) {
	if err := checkDegenerate(src); err != nil {
		return geometry.Homography{}, err
	}

	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		A.Set(r, 0, X)
		A.Set(r, 1, Y)
		A.Set(r, 2, 1)
		A.Set(r, 6, -X*x)
		A.Set(r, 7, -Y*x)
		b.SetVec(r, x)

		A.Set(r+1, 3, X)
		A.Set(r+1, 4, Y)
		A.Set(r+1, 5, 1)
		A.Set(r+1, 6, -X*y)
		A.Set(r+1, 7, -Y*y)
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(A, b); err != nil {
		return geometry.Homography{}, fmt.Errorf("homography solve: %w", ErrDegenerateQuad)
	}

	return geometry.Homography{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}, nil
}

// checkDegenerate rejects quads where any three of the four points are
// collinear or coincident.
func checkDegenerate(q geometry.Quad) error {
	triples := [4][3]int{
		{0, 1, 2},
		{0, 1, 3},
		{0, 2, 3},
		{1, 2, 3},
	}
	for _, t := range triples {
		if geometry.Collinear(q[t[0]], q[t[1]], q[t[2]], collinearTol) {
			return fmt.Errorf("points %d,%d,%d collinear: %w", t[0], t[1], t[2], ErrDegenerateQuad)
		}
	}
	return nil
}
