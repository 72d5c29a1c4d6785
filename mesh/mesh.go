package mesh

import (
	"fmt"
	"sort"
)

// Mesh is an immutable triangulated unit cell. The core computation only
// reads it; ownership stays with the caller.
//
// Elements are linear (P1) triangles with counter-clockwise connectivity.
// PhaseTags assigns each element a material phase in [0, nphases).
// BoundaryEdges lists the facets on the cell boundary as node pairs, with a
// caller-defined integer tag per facet.
type Mesh struct {
	Nodes         [][2]float64
	Elements      [][3]int
	PhaseTags     []int
	BoundaryEdges [][2]int
	BoundaryTags  []int
}

func (m *Mesh) NumNodes() int    { return len(m.Nodes) }
func (m *Mesh) NumElements() int { return len(m.Elements) }

// ElementArea returns the signed area of element e. Positive for
// counter-clockwise connectivity.
func (m *Mesh) ElementArea(e int) float64 {
	el := m.Elements[e]
	p0, p1, p2 := m.Nodes[el[0]], m.Nodes[el[1]], m.Nodes[el[2]]
	return 0.5 * ((p1[0]-p0[0])*(p2[1]-p0[1]) - (p2[0]-p0[0])*(p1[1]-p0[1]))
}

// ShapeGradients returns the constant gradients of the three P1 shape
// functions on element e, together with the element area.
func (m *Mesh) ShapeGradients(e int) (grads [3][2]float64, area float64, err error) {
	el := m.Elements[e]
	p0, p1, p2 := m.Nodes[el[0]], m.Nodes[el[1]], m.Nodes[el[2]]
	area = m.ElementArea(e)
	if area <= 0 {
		return grads, area, fmt.Errorf("element %d has non-positive area %g", e, area)
	}
	inv := 1.0 / (2.0 * area)
	// grad(phi_i) is the rotated opposite edge over twice the area
	grads[0] = [2]float64{(p1[1] - p2[1]) * inv, (p2[0] - p1[0]) * inv}
	grads[1] = [2]float64{(p2[1] - p0[1]) * inv, (p0[0] - p2[0]) * inv}
	grads[2] = [2]float64{(p0[1] - p1[1]) * inv, (p1[0] - p0[0]) * inv}
	return grads, area, nil
}

// TotalArea returns the summed area of all elements.
func (m *Mesh) TotalArea() float64 {
	var a float64
	for e := range m.Elements {
		a += m.ElementArea(e)
	}
	return a
}

// PhaseFractions returns the volume fraction of each phase tag.
func (m *Mesh) PhaseFractions(nphases int) ([]float64, error) {
	frac := make([]float64, nphases)
	var total float64
	for e := range m.Elements {
		tag := m.PhaseTags[e]
		if tag < 0 || tag >= nphases {
			return nil, fmt.Errorf("element %d: phase tag %d outside [0,%d)", e, tag, nphases)
		}
		a := m.ElementArea(e)
		frac[tag] += a
		total += a
	}
	for i := range frac {
		frac[i] /= total
	}
	return frac, nil
}

// BoundaryNodes returns the sorted set of nodes appearing in boundary edges.
func (m *Mesh) BoundaryNodes() []int {
	seen := make(map[int]bool)
	for _, e := range m.BoundaryEdges {
		seen[e[0]] = true
		seen[e[1]] = true
	}
	nodes := make([]int, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return nodes
}

// Verify checks structural consistency: index bounds, tag array lengths and
// positive element areas.
func (m *Mesh) Verify() error {
	if len(m.Nodes) == 0 || len(m.Elements) == 0 {
		return fmt.Errorf("empty mesh: %d nodes, %d elements", len(m.Nodes), len(m.Elements))
	}
	if len(m.PhaseTags) != len(m.Elements) {
		return fmt.Errorf("phase tag count %d does not match element count %d",
			len(m.PhaseTags), len(m.Elements))
	}
	if len(m.BoundaryTags) != len(m.BoundaryEdges) {
		return fmt.Errorf("boundary tag count %d does not match boundary edge count %d",
			len(m.BoundaryTags), len(m.BoundaryEdges))
	}
	for e, el := range m.Elements {
		for _, n := range el {
			if n < 0 || n >= len(m.Nodes) {
				return fmt.Errorf("element %d references node %d (have %d nodes)", e, n, len(m.Nodes))
			}
		}
		if a := m.ElementArea(e); a <= 0 {
			return fmt.Errorf("element %d has non-positive area %g", e, a)
		}
	}
	for i, be := range m.BoundaryEdges {
		for _, n := range be {
			if n < 0 || n >= len(m.Nodes) {
				return fmt.Errorf("boundary edge %d references node %d (have %d nodes)", i, n, len(m.Nodes))
			}
		}
	}
	return nil
}
