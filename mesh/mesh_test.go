package mesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerate_Counts(t *testing.T) {
	a1 := [2]float64{1, 0}
	a2 := [2]float64{0.5, 0.9}
	m, err := Generate([2]float64{0, 0}, a1, a2, 4, 3, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := m.NumNodes(), 5*4; got != want {
		t.Errorf("NumNodes=%d, want %d", got, want)
	}
	if got, want := m.NumElements(), 2*4*3; got != want {
		t.Errorf("NumElements=%d, want %d", got, want)
	}
	if got, want := len(m.BoundaryEdges), 2*(4+3); got != want {
		t.Errorf("boundary edges=%d, want %d", got, want)
	}
	cellArea := a1[0]*a2[1] - a1[1]*a2[0]
	if got := m.TotalArea(); math.Abs(got-cellArea) > 1e-12 {
		t.Errorf("TotalArea=%g, want %g", got, cellArea)
	}
	if err := m.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestGenerate_UnitConnectivity(t *testing.T) {
	m, err := Generate([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, 1, 1, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := [][3]int{{0, 1, 3}, {0, 3, 2}}
	if diff := cmp.Diff(want, m.Elements); diff != "" {
		t.Errorf("connectivity mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Invalid(t *testing.T) {
	if _, err := Generate([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, 0, 1, nil); err == nil {
		t.Error("expected error for zero subdivisions")
	}
	// negatively oriented lattice
	if _, err := Generate([2]float64{0, 0}, [2]float64{0, 1}, [2]float64{1, 0}, 2, 2, nil); err == nil {
		t.Error("expected error for negatively oriented lattice vectors")
	}
}

func TestShapeGradients(t *testing.T) {
	m := &Mesh{
		Nodes:     [][2]float64{{0, 0}, {1, 0}, {0, 1}},
		Elements:  [][3]int{{0, 1, 2}},
		PhaseTags: []int{0},
	}
	grads, area, err := m.ShapeGradients(0)
	if err != nil {
		t.Fatalf("ShapeGradients: %v", err)
	}
	if math.Abs(area-0.5) > 1e-14 {
		t.Errorf("area=%g, want 0.5", area)
	}
	want := [3][2]float64{{-1, -1}, {1, 0}, {0, 1}}
	for l := 0; l < 3; l++ {
		for d := 0; d < 2; d++ {
			if math.Abs(grads[l][d]-want[l][d]) > 1e-14 {
				t.Errorf("grad[%d][%d]=%g, want %g", l, d, grads[l][d], want[l][d])
			}
		}
	}
	// partition of unity: gradients sum to zero
	for d := 0; d < 2; d++ {
		if s := grads[0][d] + grads[1][d] + grads[2][d]; math.Abs(s) > 1e-14 {
			t.Errorf("gradient sum in dim %d = %g, want 0", d, s)
		}
	}
}

func TestVerify_Errors(t *testing.T) {
	base := func() *Mesh {
		return &Mesh{
			Nodes:     [][2]float64{{0, 0}, {1, 0}, {0, 1}},
			Elements:  [][3]int{{0, 1, 2}},
			PhaseTags: []int{0},
		}
	}

	m := base()
	m.Elements[0][2] = 99
	if err := m.Verify(); err == nil {
		t.Error("expected error for out-of-range node index")
	}

	m = base()
	m.PhaseTags = nil
	if err := m.Verify(); err == nil {
		t.Error("expected error for missing phase tags")
	}

	m = base()
	m.Elements[0] = [3]int{0, 2, 1} // clockwise
	if err := m.Verify(); err == nil {
		t.Error("expected error for negative element area")
	}
}

func TestLatticeInclusion(t *testing.T) {
	a1 := [2]float64{1, 0}
	a2 := [2]float64{0.5, math.Sqrt(3) / 2}
	center := [2]float64{(a1[0] + a2[0]) / 2, (a1[1] + a2[1]) / 2}
	tag := LatticeInclusion(a1, a2, center, 0.2, 0, 1)

	if got := tag(center); got != 1 {
		t.Errorf("center tagged %d, want inclusion (1)", got)
	}
	if got := tag([2]float64{0.05, 0.05}); got != 0 {
		t.Errorf("near-origin point tagged %d, want matrix (0)", got)
	}
	// periodic image: the inclusion repeats one lattice step away
	img := [2]float64{center[0] + a1[0], center[1] + a1[1]}
	if got := tag(img); got != 1 {
		t.Errorf("periodic image tagged %d, want inclusion (1)", got)
	}
}

func TestPhaseFractions(t *testing.T) {
	a1 := [2]float64{1, 0}
	a2 := [2]float64{0.5, math.Sqrt(3) / 2}
	center := [2]float64{(a1[0] + a2[0]) / 2, (a1[1] + a2[1]) / 2}
	m, err := Generate([2]float64{0, 0}, a1, a2, 48, 48,
		LatticeInclusion(a1, a2, center, 0.2, 0, 1))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	frac, err := m.PhaseFractions(2)
	if err != nil {
		t.Fatalf("PhaseFractions: %v", err)
	}
	cellArea := a1[0]*a2[1] - a1[1]*a2[0]
	want := math.Pi * 0.2 * 0.2 / cellArea
	if math.Abs(frac[1]-want) > 0.01 {
		t.Errorf("inclusion fraction=%g, want %g within 0.01", frac[1], want)
	}
	if math.Abs(frac[0]+frac[1]-1) > 1e-12 {
		t.Errorf("fractions sum to %g, want 1", frac[0]+frac[1])
	}

	if _, err := m.PhaseFractions(1); err == nil {
		t.Error("expected error for phase tag outside table")
	}
}
