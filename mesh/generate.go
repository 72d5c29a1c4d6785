package mesh

import (
	"fmt"
	"math"
)

// Boundary tags produced by Generate, one per cell edge.
const (
	TagBottom = 1
	TagRight  = 2
	TagTop    = 3
	TagLeft   = 4
)

// PhaseTagger assigns a material phase tag to an element given its centroid.
type PhaseTagger func(centroid [2]float64) int

// Uniform tags every element with the same phase.
func Uniform(phase int) PhaseTagger {
	return func([2]float64) int { return phase }
}

// LatticeInclusion tags elements whose centroid falls within distance r of
// the inclusion center or any of its periodic images under the lattice
// spanned by a1 and a2. Elements inside get the inclusion phase, the rest
// the matrix phase.
func LatticeInclusion(a1, a2, center [2]float64, r float64, matrix, inclusion int) PhaseTagger {
	return func(c [2]float64) int {
		for i := -1; i <= 1; i++ {
			for j := -1; j <= 1; j++ {
				dx := c[0] - center[0] - float64(i)*a1[0] - float64(j)*a2[0]
				dy := c[1] - center[1] - float64(i)*a1[1] - float64(j)*a2[1]
				if math.Hypot(dx, dy) <= r {
					return inclusion
				}
			}
		}
		return matrix
	}
}

// Generate builds a structured triangulation of the parallelogram spanned by
// a1 and a2 from origin v0, with nx by ny quad subdivisions each split into
// two triangles. Nodes on opposite edges match exactly under lattice
// translation, so periodic pairing is exact for generated meshes.
func Generate(v0, a1, a2 [2]float64, nx, ny int, tag PhaseTagger) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("invalid subdivisions: nx=%d, ny=%d", nx, ny)
	}
	if det := a1[0]*a2[1] - a1[1]*a2[0]; det <= 0 {
		return nil, fmt.Errorf("lattice vectors must be positively oriented, det=%g", det)
	}
	if tag == nil {
		tag = Uniform(0)
	}

	m := &Mesh{
		Nodes:    make([][2]float64, 0, (nx+1)*(ny+1)),
		Elements: make([][3]int, 0, 2*nx*ny),
	}
	node := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			s := float64(i) / float64(nx)
			t := float64(j) / float64(ny)
			m.Nodes = append(m.Nodes, [2]float64{
				v0[0] + s*a1[0] + t*a2[0],
				v0[1] + s*a1[1] + t*a2[1],
			})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n00, n10 := node(i, j), node(i+1, j)
			n01, n11 := node(i, j+1), node(i+1, j+1)
			m.Elements = append(m.Elements, [3]int{n00, n10, n11}, [3]int{n00, n11, n01})
		}
	}

	m.PhaseTags = make([]int, len(m.Elements))
	for e, el := range m.Elements {
		cx := (m.Nodes[el[0]][0] + m.Nodes[el[1]][0] + m.Nodes[el[2]][0]) / 3
		cy := (m.Nodes[el[0]][1] + m.Nodes[el[1]][1] + m.Nodes[el[2]][1]) / 3
		m.PhaseTags[e] = tag([2]float64{cx, cy})
	}

	for i := 0; i < nx; i++ {
		m.BoundaryEdges = append(m.BoundaryEdges, [2]int{node(i, 0), node(i+1, 0)})
		m.BoundaryTags = append(m.BoundaryTags, TagBottom)
		m.BoundaryEdges = append(m.BoundaryEdges, [2]int{node(i, ny), node(i+1, ny)})
		m.BoundaryTags = append(m.BoundaryTags, TagTop)
	}
	for j := 0; j < ny; j++ {
		m.BoundaryEdges = append(m.BoundaryEdges, [2]int{node(0, j), node(0, j+1)})
		m.BoundaryTags = append(m.BoundaryTags, TagLeft)
		m.BoundaryEdges = append(m.BoundaryEdges, [2]int{node(nx, j), node(nx, j+1)})
		m.BoundaryTags = append(m.BoundaryTags, TagRight)
	}

	if err := m.Verify(); err != nil {
		return nil, err
	}
	return m, nil
}
