// Package homog assembles and solves the periodic corrector problems of a
// two-phase unit cell and aggregates the averaged stresses into the
// homogenized stiffness tensor.
package homog

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/alhermann/microcell/cell"
	"github.com/alhermann/microcell/elastic"
	"github.com/alhermann/microcell/mesh"
)

// MacroStrain is a symmetric 2x2 macroscopic strain tensor. XY is the
// tensor off-diagonal component (not the engineering shear).
type MacroStrain struct {
	XX, YY, XY float64
}

// Voigt returns the strain in Voigt ordering (xx, yy, xy) with engineering
// shear 2*XY.
func (e MacroStrain) Voigt() [3]float64 {
	return [3]float64{e.XX, e.YY, 2 * e.XY}
}

// ElementaryStrains returns the three elementary load cases. Each sets one
// Voigt component to 1; the shear case uses off-diagonal entries 0.5 so the
// tensor stays symmetric.
func ElementaryStrains() [3]MacroStrain {
	return [3]MacroStrain{
		{XX: 1},
		{YY: 1},
		{XY: 0.5},
	}
}

// Assembler builds the saddle-point system of the corrector problem on the
// periodic equivalence classes. It is pure given its read-only inputs and
// safe for concurrent use across load cases.
type Assembler struct {
	Mesh    *mesh.Mesh
	Pairing *cell.PeriodicPairing
	Table   *elastic.Table

	area float64 // total mesh area
	ndof int     // displacement unknowns, 2 per node class
}

// NewAssembler validates that every element phase tag resolves in the
// material table and precomputes the unknown layout.
func NewAssembler(m *mesh.Mesh, pp *cell.PeriodicPairing, table *elastic.Table) (*Assembler, error) {
	for e, tag := range m.PhaseTags {
		if tag < 0 || tag >= table.NumPhases() {
			return nil, fmt.Errorf("element %d: phase tag %d outside [0,%d)", e, tag, table.NumPhases())
		}
	}
	return &Assembler{
		Mesh:    m,
		Pairing: pp,
		Table:   table,
		area:    m.TotalArea(),
		ndof:    2 * pp.NumClasses,
	}, nil
}

// NumDOF returns the full system size: displacement unknowns plus the
// 2-component Lagrange multiplier enforcing zero mean fluctuation.
func (a *Assembler) NumDOF() int { return a.ndof + 2 }

// dof returns the global unknown of direction d at local node l of element e.
func (a *Assembler) dof(e, l, d int) int {
	return 2*a.Pairing.Class[a.Mesh.Elements[e][l]] + d
}

// elementStiffness returns the 6x6 element matrix A * B^T D B and the load
// vector -A * B^T D E for macroscopic Voigt strain ev. The 3x6 strain
// operator B holds the constant P1 shape gradients in Voigt layout.
func elementStiffness(grads [3][2]float64, area float64, d [3][3]float64, ev [3]float64) (ke [6][6]float64, fe [6]float64) {
	var b [3][6]float64
	for l := 0; l < 3; l++ {
		gx, gy := grads[l][0], grads[l][1]
		b[0][2*l] = gx
		b[1][2*l+1] = gy
		b[2][2*l] = gy
		b[2][2*l+1] = gx
	}
	var db [3][6]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 6; j++ {
			for k := 0; k < 3; k++ {
				db[i][j] += d[i][k] * b[k][j]
			}
		}
	}
	var de [3]float64
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			de[i] += d[i][k] * ev[k]
		}
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			for k := 0; k < 3; k++ {
				ke[i][j] += area * b[k][i] * db[k][j]
			}
		}
		for k := 0; k < 3; k++ {
			fe[i] -= area * b[k][i] * de[k]
		}
	}
	return ke, fe
}

// BuildSystem assembles the symmetric indefinite system
//
//	[ K  C^T ] [ v ]   [ f ]
//	[ C  0   ] [ l ] = [ 0 ]
//
// for macroscopic strain E. K is the elastic bilinear form on the merged
// periodic unknowns, C enforces zero mean fluctuation, and f carries the
// macroscopic strain through the constitutive law. Indefiniteness is
// inherent to the multiplier block, not an error.
func (a *Assembler) BuildSystem(E MacroStrain) (mat.Matrix, *mat.VecDense, error) {
	n := a.NumDOF()
	dok := sparse.NewDOK(n, n)
	rhs := mat.NewVecDense(n, nil)
	add := func(i, j int, v float64) {
		if v != 0 {
			dok.Set(i, j, dok.At(i, j)+v)
		}
	}
	ev := E.Voigt()

	for e := range a.Mesh.Elements {
		grads, area, err := a.Mesh.ShapeGradients(e)
		if err != nil {
			return nil, nil, err
		}
		d, err := a.Table.Stiffness(a.Mesh.PhaseTags[e])
		if err != nil {
			return nil, nil, err
		}
		ke, fe := elementStiffness(grads, area, d, ev)

		var gdof [6]int
		for l := 0; l < 3; l++ {
			gdof[2*l] = a.dof(e, l, 0)
			gdof[2*l+1] = a.dof(e, l, 1)
		}
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				add(gdof[i], gdof[j], ke[i][j])
			}
			rhs.SetVec(gdof[i], rhs.AtVec(gdof[i])+fe[i])
		}

		// zero-mean constraint: integral of each P1 shape function is a
		// third of the element area
		w := area / 3
		for l := 0; l < 3; l++ {
			for d := 0; d < 2; d++ {
				g := a.dof(e, l, d)
				add(a.ndof+d, g, w)
				add(g, a.ndof+d, w)
			}
		}
	}

	return dok.ToCSR(), rhs, nil
}

// AverageStress returns the volume average of the Voigt stress components
// for the solved fluctuation x under macroscopic strain E, together with
// the per-phase averages (normalized by total cell area, so the per-phase
// rows sum to the total).
func (a *Assembler) AverageStress(E MacroStrain, x *mat.VecDense) (avg [3]float64, perPhase [][3]float64, err error) {
	perPhase = make([][3]float64, a.Table.NumPhases())
	ev := E.Voigt()
	for e := range a.Mesh.Elements {
		grads, area, err := a.Mesh.ShapeGradients(e)
		if err != nil {
			return avg, nil, err
		}
		// total strain in Voigt form: fluctuation gradient plus macro strain
		eps := ev
		for l := 0; l < 3; l++ {
			ux := x.AtVec(a.dof(e, l, 0))
			uy := x.AtVec(a.dof(e, l, 1))
			eps[0] += grads[l][0] * ux
			eps[1] += grads[l][1] * uy
			eps[2] += grads[l][1]*ux + grads[l][0]*uy
		}
		d, err := a.Table.Stiffness(a.Mesh.PhaseTags[e])
		if err != nil {
			return avg, nil, err
		}
		tag := a.Mesh.PhaseTags[e]
		for i := 0; i < 3; i++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += d[i][k] * eps[k]
			}
			avg[i] += area * s
			perPhase[tag][i] += area * s
		}
	}
	for i := 0; i < 3; i++ {
		avg[i] /= a.area
		for p := range perPhase {
			perPhase[p][i] /= a.area
		}
	}
	return avg, perPhase, nil
}
