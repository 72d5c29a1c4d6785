package cell

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhermann/microcell/mesh"
)

func hexMesh(t *testing.T, uc *UnitCell, nx, ny int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Generate(uc.Vertices[0], uc.A1, uc.A2, nx, ny, nil)
	require.NoError(t, err)
	return m
}

func TestPeriodicPairing_ClassCounts(t *testing.T) {
	uc := hexCell(t)
	nx, ny := 4, 3
	m := hexMesh(t, uc, nx, ny)

	pp, err := NewPeriodicPairing(uc, m)
	require.NoError(t, err)

	// top row and right column fold away; what remains is the nx*ny grid of
	// bottom/left/interior nodes
	assert.Equal(t, nx*ny, pp.NumClasses)
	assert.Len(t, pp.Dependent, (nx+1)+(ny+1)-1)
	require.NoError(t, pp.Verify())
}

func TestPeriodicPairing_CornersCollapse(t *testing.T) {
	uc := hexCell(t)
	nx, ny := 4, 4
	m := hexMesh(t, uc, nx, ny)
	node := func(i, j int) int { return j*(nx+1) + i }

	pp, err := NewPeriodicPairing(uc, m)
	require.NoError(t, err)

	c := pp.Class[node(0, 0)]
	assert.Equal(t, c, pp.Class[node(nx, 0)], "bottom-right corner")
	assert.Equal(t, c, pp.Class[node(0, ny)], "top-left corner")
	assert.Equal(t, c, pp.Class[node(nx, ny)], "top-right corner")
}

func TestPeriodicPairing_EdgeBijection(t *testing.T) {
	uc := hexCell(t)
	nx, ny := 5, 4
	m := hexMesh(t, uc, nx, ny)
	node := func(i, j int) int { return j*(nx+1) + i }

	pp, err := NewPeriodicPairing(uc, m)
	require.NoError(t, err)

	// each right-edge node pairs with the left-edge node at the same height,
	// each top-edge node with the bottom-edge node at the same abscissa
	for j := 1; j < ny; j++ {
		assert.Equal(t, pp.Class[node(0, j)], pp.Class[node(nx, j)], "row %d", j)
	}
	for i := 1; i < nx; i++ {
		assert.Equal(t, pp.Class[node(i, 0)], pp.Class[node(i, ny)], "column %d", i)
	}

	// the pairing is a bijection: the corner class has 4 nodes, matched edge
	// classes 2, everything else 1
	sizes := make(map[int]int)
	for _, c := range pp.Class {
		sizes[c]++
	}
	var fours, twos int
	for _, s := range sizes {
		switch s {
		case 4:
			fours++
		case 2:
			twos++
		case 1:
		default:
			t.Fatalf("class of size %d, want 1, 2 or 4", s)
		}
	}
	assert.Equal(t, 1, fours, "corner classes")
	assert.Equal(t, (nx-1)+(ny-1), twos, "edge pair classes")
}

func TestPeriodicPairing_MismatchedCell(t *testing.T) {
	uc := hexCell(t)
	// mesh of a different cell: boundary nodes land on no edge of uc
	other, err := mesh.Generate([2]float64{0, 0}, [2]float64{2, 0}, [2]float64{0, 2}, 3, 3, nil)
	require.NoError(t, err)

	_, err = NewPeriodicPairing(uc, other)
	require.Error(t, err)
}

func TestPeriodicPairing_InteriorUntouched(t *testing.T) {
	uc := hexCell(t)
	m := hexMesh(t, uc, 3, 3)

	pp, err := NewPeriodicPairing(uc, m)
	require.NoError(t, err)

	boundary := make(map[int]bool)
	for _, n := range m.BoundaryNodes() {
		boundary[n] = true
	}
	sizes := make(map[int]int)
	for _, c := range pp.Class {
		sizes[c]++
	}
	for n := 0; n < m.NumNodes(); n++ {
		if !boundary[n] {
			assert.Equal(t, 1, sizes[pp.Class[n]], "interior node %d must keep its own class", n)
		}
	}
}

func TestPeriodicPairing_SkewInvariance(t *testing.T) {
	// the classifier is parametric in the lattice vectors, so a strongly
	// sheared cell pairs the same way as a square one
	a1 := [2]float64{2, 0.5}
	a2 := [2]float64{0.8, 1.7}
	uc, err := New([4][2]float64{
		{0, 0},
		{a1[0], a1[1]},
		{a1[0] + a2[0], a1[1] + a2[1]},
		{a2[0], a2[1]},
	}, 0)
	require.NoError(t, err)

	m, err := mesh.Generate([2]float64{0, 0}, a1, a2, 6, 5, nil)
	require.NoError(t, err)

	pp, err := NewPeriodicPairing(uc, m)
	require.NoError(t, err)
	assert.Equal(t, 6*5, pp.NumClasses)
	require.NoError(t, pp.Verify())

	// paired nodes differ by an exact lattice translation
	for _, n := range pp.Dependent {
		img, ok := uc.CanonicalImage(m.Nodes[n])
		require.True(t, ok, "dependent node %d", n)
		found := false
		for q := 0; q < m.NumNodes(); q++ {
			if pp.Class[q] == pp.Class[n] && q != n {
				if math.Hypot(m.Nodes[q][0]-img[0], m.Nodes[q][1]-img[1]) <= uc.Tol {
					found = true
				}
			}
		}
		assert.True(t, found, "no translated partner for node %d", n)
	}
}
