package cell

import (
	"fmt"
	"math"

	"github.com/alhermann/microcell/mesh"
)

// PeriodicPairing merges mesh nodes identified by the periodic translation
// into equivalence classes. Independent unknowns of the discretization
// correspond to classes, not raw nodes; all four cell corners collapse into
// a single class. Built once per mesh and read-only afterwards.
type PeriodicPairing struct {
	// Class maps each mesh node to its equivalence class in [0, NumClasses).
	Class []int
	// NumClasses is the number of independent node classes.
	NumClasses int
	// Dependent lists the boundary nodes that were folded onto another node.
	Dependent []int

	cell *UnitCell
	msh  *mesh.Mesh
}

// NewPeriodicPairing classifies every boundary node of the mesh against the
// unit cell and unions each dependent node with the independent node its
// canonical image lands on. A dependent node whose image matches no mesh
// node within the cell tolerance is a configuration error (mesh and cell
// disagree), as is an image matching two nodes (tolerance too coarse for
// the mesh).
func NewPeriodicPairing(uc *UnitCell, m *mesh.Mesh) (*PeriodicPairing, error) {
	if err := m.Verify(); err != nil {
		return nil, fmt.Errorf("periodic pairing: %w", err)
	}
	boundary := m.BoundaryNodes()

	// Partition boundary nodes by classification. Nodes that are neither
	// independent nor dependent do not lie on the cell boundary at all,
	// which means the mesh does not match the cell.
	var independent, dependent []int
	images := make(map[int][2]float64, len(boundary))
	for _, n := range boundary {
		p := m.Nodes[n]
		if uc.IsIndependentBoundaryPoint(p) {
			independent = append(independent, n)
			continue
		}
		img, ok := uc.CanonicalImage(p)
		if !ok {
			return nil, fmt.Errorf("boundary node %d at %v lies on no cell edge", n, p)
		}
		dependent = append(dependent, n)
		images[n] = img
	}

	uf := newUnionFind(m.NumNodes())
	for _, n := range dependent {
		img := images[n]
		match, err := findMatch(m, independent, img, uc.Tol)
		if err != nil {
			return nil, fmt.Errorf("boundary node %d at %v: %w", n, m.Nodes[n], err)
		}
		uf.union(match, n)
	}

	pp := &PeriodicPairing{
		Class:     make([]int, m.NumNodes()),
		Dependent: dependent,
		cell:      uc,
		msh:       m,
	}
	classOf := make(map[int]int)
	for n := 0; n < m.NumNodes(); n++ {
		root := uf.find(n)
		c, ok := classOf[root]
		if !ok {
			c = len(classOf)
			classOf[root] = c
		}
		pp.Class[n] = c
	}
	pp.NumClasses = len(classOf)

	if err := pp.Verify(); err != nil {
		return nil, err
	}
	return pp, nil
}

// findMatch locates the unique independent node within tol of point p.
func findMatch(m *mesh.Mesh, independent []int, p [2]float64, tol float64) (int, error) {
	match, count := -1, 0
	for _, n := range independent {
		q := m.Nodes[n]
		if math.Hypot(q[0]-p[0], q[1]-p[1]) <= tol {
			match = n
			count++
		}
	}
	switch {
	case count == 0:
		return -1, fmt.Errorf("canonical image %v matches no independent boundary node within tol %g", p, tol)
	case count > 1:
		return -1, fmt.Errorf("canonical image %v matches %d independent boundary nodes: tolerance %g too coarse", p, count, tol)
	}
	return match, nil
}

// Verify checks the pairing invariants: class count conservation and that
// every dependent node shares its class with an independent boundary point.
func (pp *PeriodicPairing) Verify() error {
	if got, want := pp.NumClasses, pp.msh.NumNodes()-len(pp.Dependent); got != want {
		return fmt.Errorf("class conservation: %d classes for %d nodes with %d dependent (want %d)",
			got, pp.msh.NumNodes(), len(pp.Dependent), want)
	}
	isDependent := make([]bool, pp.msh.NumNodes())
	for _, n := range pp.Dependent {
		isDependent[n] = true
	}
	hasIndependent := make([]bool, pp.NumClasses)
	for n := 0; n < pp.msh.NumNodes(); n++ {
		if !isDependent[n] {
			hasIndependent[pp.Class[n]] = true
		}
	}
	for _, n := range pp.Dependent {
		if !hasIndependent[pp.Class[n]] {
			return fmt.Errorf("dependent node %d has no independent node in its class", n)
		}
	}
	return nil
}

// union-find over node indices, path-halving with union by size
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
