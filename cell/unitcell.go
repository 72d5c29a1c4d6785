// Package cell defines the parallelogram unit cell, the geometric
// classification of its periodic boundary, and the pairing of mesh degrees
// of freedom across opposite edges.
package cell

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTol is the absolute coordinate tolerance used when matching
// boundary points, if the caller does not supply one.
const DefaultTol = 1e-9

// UnitCell is a parallelogram unit cell given by four counter-clockwise
// vertices starting at the origin-adjacent one. The lattice vectors are
// A1 = v1-v0 and A2 = v3-v0.
type UnitCell struct {
	Vertices [4][2]float64
	A1, A2   [2]float64
	Tol      float64

	det        float64 // cross(A1, A2), the cell area
	sTol, tTol float64 // Tol converted to parametric tolerances
}

// New validates the parallelogram invariant (v2-v3 == A1 and v2-v1 == A2
// within tol) and returns the cell. tol <= 0 selects DefaultTol.
func New(vertices [4][2]float64, tol float64) (*UnitCell, error) {
	if tol <= 0 {
		tol = DefaultTol
	}
	uc := &UnitCell{Vertices: vertices, Tol: tol}
	uc.A1 = [2]float64{vertices[1][0] - vertices[0][0], vertices[1][1] - vertices[0][1]}
	uc.A2 = [2]float64{vertices[3][0] - vertices[0][0], vertices[3][1] - vertices[0][1]}

	for d := 0; d < 2; d++ {
		if !scalar.EqualWithinAbs(vertices[2][d]-vertices[3][d], uc.A1[d], tol) {
			return nil, fmt.Errorf("unit cell is not a parallelogram: v2-v3=%v differs from a1=%v",
				[2]float64{vertices[2][0] - vertices[3][0], vertices[2][1] - vertices[3][1]}, uc.A1)
		}
		if !scalar.EqualWithinAbs(vertices[2][d]-vertices[1][d], uc.A2[d], tol) {
			return nil, fmt.Errorf("unit cell is not a parallelogram: v2-v1=%v differs from a2=%v",
				[2]float64{vertices[2][0] - vertices[1][0], vertices[2][1] - vertices[1][1]}, uc.A2)
		}
	}

	uc.det = uc.A1[0]*uc.A2[1] - uc.A1[1]*uc.A2[0]
	l1 := math.Hypot(uc.A1[0], uc.A1[1])
	l2 := math.Hypot(uc.A2[0], uc.A2[1])
	if l1 <= tol || l2 <= tol || uc.det <= tol*l1*l2 {
		return nil, fmt.Errorf("degenerate unit cell: |a1|=%g, |a2|=%g, area=%g", l1, l2, uc.det)
	}
	uc.sTol = tol / l1
	uc.tTol = tol / l2
	return uc, nil
}

// Area returns the cell area |a1 x a2|.
func (uc *UnitCell) Area() float64 { return uc.det }

// Params expresses p in lattice coordinates: p = v0 + s*a1 + t*a2.
func (uc *UnitCell) Params(p [2]float64) (s, t float64) {
	dx := p[0] - uc.Vertices[0][0]
	dy := p[1] - uc.Vertices[0][1]
	s = (dx*uc.A2[1] - dy*uc.A2[0]) / uc.det
	t = (uc.A1[0]*dy - uc.A1[1]*dx) / uc.det
	return s, t
}

// edge membership in parametric coordinates
func (uc *UnitCell) onBottom(s, t float64) bool {
	return math.Abs(t) <= uc.tTol && s >= -uc.sTol && s <= 1+uc.sTol
}
func (uc *UnitCell) onTop(s, t float64) bool {
	return math.Abs(t-1) <= uc.tTol && s >= -uc.sTol && s <= 1+uc.sTol
}
func (uc *UnitCell) onLeft(s, t float64) bool {
	return math.Abs(s) <= uc.sTol && t >= -uc.tTol && t <= 1+uc.tTol
}
func (uc *UnitCell) onRight(s, t float64) bool {
	return math.Abs(s-1) <= uc.sTol && t >= -uc.tTol && t <= 1+uc.tTol
}

// IsIndependentBoundaryPoint reports whether p lies on the left or bottom
// edge of the cell and is not the bottom-right or top-left corner. These
// points carry the independent periodic unknowns; every other boundary point
// folds onto one of them under CanonicalImage.
func (uc *UnitCell) IsIndependentBoundaryPoint(p [2]float64) bool {
	s, t := uc.Params(p)
	if uc.onBottom(s, t) && s < 1-uc.sTol {
		return true
	}
	return uc.onLeft(s, t) && t < 1-uc.tTol
}

// CanonicalImage maps a dependent boundary point to its periodic
// representative: right edge points translate by -a1, top edge points by
// -a2, and the top-right corner by -(a1+a2). The corner case is tested
// first so a point near both edges is not mapped twice. The second return
// is false if p is not a dependent boundary point.
func (uc *UnitCell) CanonicalImage(p [2]float64) ([2]float64, bool) {
	s, t := uc.Params(p)
	right, top := uc.onRight(s, t), uc.onTop(s, t)
	switch {
	case right && top:
		return [2]float64{p[0] - uc.A1[0] - uc.A2[0], p[1] - uc.A1[1] - uc.A2[1]}, true
	case right:
		return [2]float64{p[0] - uc.A1[0], p[1] - uc.A1[1]}, true
	case top:
		return [2]float64{p[0] - uc.A2[0], p[1] - uc.A2[1]}, true
	}
	return p, false
}

// OnBoundary reports whether p lies on any of the four cell edges.
func (uc *UnitCell) OnBoundary(p [2]float64) bool {
	s, t := uc.Params(p)
	return uc.onBottom(s, t) || uc.onTop(s, t) || uc.onLeft(s, t) || uc.onRight(s, t)
}
