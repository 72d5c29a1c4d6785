// Package elastic holds the per-phase isotropic linear-elastic material law
// in plane strain. Constitutive dispatch is a lookup table of precomputed
// Lamé parameters indexed by the mesh phase tag.
package elastic

import "fmt"

// Phase is one isotropic material phase. Lam and Mu are derived from E and
// Nu at construction and never change.
type Phase struct {
	E  float64 // Young's modulus
	Nu float64 // Poisson ratio
	La float64 // first Lamé parameter
	Mu float64 // shear modulus
}

// NewPhase derives the Lamé parameters for a phase.
func NewPhase(e, nu float64) (Phase, error) {
	if e <= 0 {
		return Phase{}, fmt.Errorf("Young's modulus must be positive, got %g", e)
	}
	if nu <= -1 || nu >= 0.5 {
		return Phase{}, fmt.Errorf("Poisson ratio must be in (-1, 0.5), got %g", nu)
	}
	return Phase{
		E:  e,
		Nu: nu,
		La: e * nu / ((1 + nu) * (1 - 2*nu)),
		Mu: e / (2 * (1 + nu)),
	}, nil
}

// Table is the closed set of material phases of a unit cell, ordered to
// match the mesh phase tags.
type Table struct {
	Phases []Phase
}

// NewTable builds the phase table from ordered (E, nu) pairs.
func NewTable(params [][2]float64) (*Table, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("at least one material phase is required")
	}
	t := &Table{Phases: make([]Phase, len(params))}
	for i, p := range params {
		ph, err := NewPhase(p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("phase %d: %w", i, err)
		}
		t.Phases[i] = ph
	}
	return t, nil
}

// NumPhases returns the number of phases in the table.
func (t *Table) NumPhases() int { return len(t.Phases) }

func (t *Table) phase(i int) (Phase, error) {
	if i < 0 || i >= len(t.Phases) {
		return Phase{}, fmt.Errorf("phase index %d outside [0,%d)", i, len(t.Phases))
	}
	return t.Phases[i], nil
}

// Stiffness returns the 3x3 plane-strain stiffness of phase i in Voigt
// ordering (xx, yy, xy) with engineering shear strain:
//
//	[ la+2mu   la      0  ]
//	[ la       la+2mu  0  ]
//	[ 0        0       mu ]
func (t *Table) Stiffness(i int) ([3][3]float64, error) {
	ph, err := t.phase(i)
	if err != nil {
		return [3][3]float64{}, err
	}
	return [3][3]float64{
		{ph.La + 2*ph.Mu, ph.La, 0},
		{ph.La, ph.La + 2*ph.Mu, 0},
		{0, 0, ph.Mu},
	}, nil
}

// Stress evaluates sigma = la*tr(eps)*I + 2*mu*eps for the total strain
// tensor eps (fluctuation gradient plus macroscopic strain). Pure function
// of its inputs.
func (t *Table) Stress(i int, eps [2][2]float64) ([2][2]float64, error) {
	ph, err := t.phase(i)
	if err != nil {
		return [2][2]float64{}, err
	}
	tr := eps[0][0] + eps[1][1]
	return [2][2]float64{
		{ph.La*tr + 2*ph.Mu*eps[0][0], 2 * ph.Mu * eps[0][1]},
		{2 * ph.Mu * eps[1][0], ph.La*tr + 2*ph.Mu*eps[1][1]},
	}, nil
}
