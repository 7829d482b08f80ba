// Package mesh holds the node and element stores of one mesh partition and
// enumerates element-face incidences for the face builder.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh pairs the node and element stores of one partition
type Mesh struct {
	Nodes    *NodeStore
	Elements *ElementStore
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Nodes:    NewNodeStore(nil),
		Elements: &ElementStore{},
	}
}

// NumNodes returns the number of nodes
func (m *Mesh) NumNodes() int { return m.Nodes.NumNodes() }

// Position returns the coordinates of node i
func (m *Mesh) Position(i int) r3.Vec { return m.Nodes.Position(i) }

// NodeSetNames returns the names of the node sets in sorted order
func (m *Mesh) NodeSetNames() []string { return m.Nodes.SetNames() }

// NodeSet returns the sorted members of a node set
func (m *Mesh) NodeSet(name string) ([]int, bool) { return m.Nodes.Set(name) }

// ForEachFacet visits every element-face incidence in region, subregion,
// element, local face order. The order only depends on insertion order, so
// repeated calls produce the same sequence.
func (m *Mesh) ForEachFacet(fn func(f Facet) error) error {
	return m.Elements.ForEachElement(func(id ElementID) error {
		return m.visitFacets(id, fn)
	})
}

// FacetsOf returns the facets of a batch of elements, in the order given
func (m *Mesh) FacetsOf(ids []ElementID) ([]Facet, error) {
	var facets []Facet
	for _, id := range ids {
		if _, err := m.Elements.SubRegion(id); err != nil {
			return nil, err
		}
		err := m.visitFacets(id, func(f Facet) error {
			facets = append(facets, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return facets, nil
}

func (m *Mesh) visitFacets(id ElementID, fn func(f Facet) error) error {
	sr := m.Elements.Regions[id.Region].SubRegions[id.SubRegion]
	for kelf := 0; kelf < sr.Shape.NumFaces(); kelf++ {
		f := Facet{
			Element:   id,
			LocalFace: kelf,
			Dim:       sr.Shape.Dimensions(),
			Nodes:     sr.FaceNodes(id.Index, kelf),
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Centroid returns the arithmetic mean of an element's vertex positions
func (m *Mesh) Centroid(id ElementID) (r3.Vec, error) {
	nodes, err := m.Elements.Nodes(id)
	if err != nil {
		return r3.Vec{}, err
	}
	var c r3.Vec
	for _, n := range nodes {
		if n < 0 || n >= m.Nodes.NumNodes() {
			return r3.Vec{}, fmt.Errorf("element %v: node %d out of range [0,%d)", id, n, m.Nodes.NumNodes())
		}
		c = r3.Add(c, m.Nodes.Position(n))
	}
	return r3.Scale(1/float64(len(nodes)), c), nil
}
