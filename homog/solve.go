package homog

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver solves the symmetric indefinite saddle-point system. A singular
// system (for instance a corrector problem missing its multiplier block,
// which retains the rigid-translation null space) must surface as an error,
// never as a silently wrong or NaN solution.
type Solver interface {
	Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error)
}

// DenseLU factorizes the system with partial-pivoting LU and rejects
// factorizations whose estimated condition number exceeds MaxCond.
type DenseLU struct {
	// MaxCond is the condition number above which the system is treated as
	// singular. Zero selects DefaultMaxCond.
	MaxCond float64
}

// DefaultMaxCond separates discretization-level ill-conditioning from a
// genuine null space.
const DefaultMaxCond = 1e12

func (s DenseLU) Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("system matrix is %dx%d, want square", r, c)
	}
	if b.Len() != r {
		return nil, fmt.Errorf("rhs length %d does not match system size %d", b.Len(), r)
	}
	maxCond := s.MaxCond
	if maxCond <= 0 {
		maxCond = DefaultMaxCond
	}

	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > maxCond {
		return nil, fmt.Errorf("singular or near-singular system (cond=%.3g, max=%.3g)", cond, maxCond)
	}

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("saddle-point solve failed: %w", err)
	}
	return &x, nil
}
