package homog

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/alhermann/microcell/cell"
	"github.com/alhermann/microcell/elastic"
	"github.com/alhermann/microcell/mesh"
)

// Config carries the tunable parameters of a homogenization run.
type Config struct {
	// Solver for the per-case saddle-point systems. Nil selects DenseLU.
	Solver Solver
	// Logger receives the non-fatal symmetry and isotropy diagnostics.
	// Nil disables diagnostic logging.
	Logger *slog.Logger
	// SymmetryTol is the relative deviation of Chom from symmetry above
	// which a warning is logged.
	SymmetryTol float64
	// IsotropyTol is the relative deviation from isotropy above which a
	// warning is logged.
	IsotropyTol float64
}

// DefaultConfig returns the thresholds used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		Solver:      DenseLU{},
		SymmetryTol: 1e-3,
		IsotropyTol: 5e-2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Solver == nil {
		c.Solver = d.Solver
	}
	if c.SymmetryTol <= 0 {
		c.SymmetryTol = d.SymmetryTol
	}
	if c.IsotropyTol <= 0 {
		c.IsotropyTol = d.IsotropyTol
	}
	return c
}

// CaseResult holds the outcome of one elementary load case.
type CaseResult struct {
	Strain      MacroStrain
	AvgStress   [3]float64   // volume-averaged Voigt stress, one row of Chom
	PhaseStress [][3]float64 // per-phase contributions to AvgStress
	Fluctuation *mat.VecDense
	Multiplier  [2]float64
}

// Result is the homogenized output of a unit cell.
type Result struct {
	Chom           *mat.Dense // 3x3, Voigt ordering (xx, yy, xy)
	LamHom, MuHom  float64
	EHom, NuHom    float64
	SymmetryDev    float64 // relative deviation from Chom symmetry
	IsotropyDev    float64 // relative deviation from isotropy
	PhaseFractions []float64
	Cases          [3]CaseResult
}

// Homogenize solves the three elementary corrector problems on the unit
// cell and assembles the apparent stiffness tensor from the averaged
// stresses. The cases share only read-only inputs and run concurrently; the
// first solver failure aborts the run, since a partially filled tensor
// would silently corrupt the derived moduli.
func Homogenize(uc *cell.UnitCell, m *mesh.Mesh, table *elastic.Table, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	pairing, err := cell.NewPeriodicPairing(uc, m)
	if err != nil {
		return nil, fmt.Errorf("periodic pairing: %w", err)
	}
	asm, err := NewAssembler(m, pairing, table)
	if err != nil {
		return nil, fmt.Errorf("assembler setup: %w", err)
	}
	if cfg.Logger != nil {
		if dev := math.Abs(m.TotalArea()-uc.Area()) / uc.Area(); dev > 1e-10 {
			cfg.Logger.Warn("mesh area deviates from cell area", "relative", dev)
		}
	}

	res := &Result{Chom: mat.NewDense(3, 3, nil)}
	var g errgroup.Group
	for i, E := range ElementaryStrains() {
		i, E := i, E
		g.Go(func() error {
			cr, err := asm.RunCase(E, cfg.Solver)
			if err != nil {
				return fmt.Errorf("load case %d (%+v): %w", i, E, err)
			}
			res.Cases[i] = cr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range res.Cases {
		for j := 0; j < 3; j++ {
			res.Chom.Set(i, j, res.Cases[i].AvgStress[j])
		}
	}

	res.PhaseFractions, err = m.PhaseFractions(table.NumPhases())
	if err != nil {
		return nil, err
	}
	postProcess(res, cfg)
	return res, nil
}

// RunCase assembles, solves and averages a single load case. Cases are
// independent; callers may run them in any order or concurrently.
func (a *Assembler) RunCase(E MacroStrain, s Solver) (CaseResult, error) {
	if s == nil {
		s = DenseLU{}
	}
	sys, rhs, err := a.BuildSystem(E)
	if err != nil {
		return CaseResult{}, err
	}
	x, err := s.Solve(sys, rhs)
	if err != nil {
		return CaseResult{}, err
	}
	avg, perPhase, err := a.AverageStress(E, x)
	if err != nil {
		return CaseResult{}, err
	}
	return CaseResult{
		Strain:      E,
		AvgStress:   avg,
		PhaseStress: perPhase,
		Fluctuation: mat.VecDenseCopyOf(x.SliceVec(0, a.ndof)),
		Multiplier:  [2]float64{x.AtVec(a.ndof), x.AtVec(a.ndof + 1)},
	}, nil
}
