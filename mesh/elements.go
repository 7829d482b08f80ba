package mesh

import (
	"fmt"

	"github.com/notargets/meshtopo/element"
)

// PaddingNode is the global-node form of element.PaddingVertex. Facets of
// padded element faces carry it in the unused slots.
const PaddingNode = -1

// ElementID identifies an element by region, subregion and local index
type ElementID struct {
	Region    int
	SubRegion int
	Index     int
}

// NoElement is the unset adjacency value
var NoElement = ElementID{Region: -1, SubRegion: -1, Index: -1}

// IsSet reports whether id refers to an element
func (id ElementID) IsSet() bool { return id != NoElement }

func (id ElementID) String() string {
	if !id.IsSet() {
		return "none"
	}
	return fmt.Sprintf("(%d,%d,%d)", id.Region, id.SubRegion, id.Index)
}

// Less orders element ids by region, subregion, then index
func (id ElementID) Less(o ElementID) bool {
	if id.Region != o.Region {
		return id.Region < o.Region
	}
	if id.SubRegion != o.SubRegion {
		return id.SubRegion < o.SubRegion
	}
	return id.Index < o.Index
}

// Facet is one element-face incidence: the nodes of local face LocalFace of
// Element, in the element's canonical order, possibly containing PaddingNode
type Facet struct {
	Element   ElementID
	LocalFace int
	Dim       element.Dimensionality
	Nodes     []int
}

// SubRegion holds elements of a single shape
type SubRegion struct {
	Name         string
	Shape        element.Shape
	Connectivity [][]int // [element][local vertex] → global node
}

// NumElements returns the number of elements in the subregion
func (sr *SubRegion) NumElements() int { return len(sr.Connectivity) }

// AddElement appends an element and returns its local index
func (sr *SubRegion) AddElement(nodes []int) (int, error) {
	if len(nodes) != sr.Shape.NumVertices() {
		return -1, fmt.Errorf("subregion %q: %v element needs %d nodes, got %d",
			sr.Name, sr.Shape.GeometryType(), sr.Shape.NumVertices(), len(nodes))
	}
	sr.Connectivity = append(sr.Connectivity, append([]int(nil), nodes...))
	return len(sr.Connectivity) - 1, nil
}

// FaceNodes returns the global nodes of a local face of element k,
// translating padded slots to PaddingNode
func (sr *SubRegion) FaceNodes(k, face int) []int {
	local := sr.Shape.FaceVertices(face)
	nodes := make([]int, len(local))
	for i, v := range local {
		if v == element.PaddingVertex {
			nodes[i] = PaddingNode
			continue
		}
		nodes[i] = sr.Connectivity[k][v]
	}
	return nodes
}

// Region groups subregions
type Region struct {
	Name       string
	SubRegions []*SubRegion
}

// AddSubRegion appends a subregion of the given shape
func (r *Region) AddSubRegion(name string, shape element.Shape) *SubRegion {
	sr := &SubRegion{Name: name, Shape: shape}
	r.SubRegions = append(r.SubRegions, sr)
	return sr
}

// ElementStore holds the elements of one partition in regions and subregions.
// Iteration order is fixed by insertion order.
type ElementStore struct {
	Regions []*Region
}

// AddRegion appends a region
func (es *ElementStore) AddRegion(name string) *Region {
	r := &Region{Name: name}
	es.Regions = append(es.Regions, r)
	return r
}

// NumElements returns the total element count over all subregions
func (es *ElementStore) NumElements() int {
	n := 0
	for _, r := range es.Regions {
		for _, sr := range r.SubRegions {
			n += sr.NumElements()
		}
	}
	return n
}

// SubRegion resolves the subregion of an element id
func (es *ElementStore) SubRegion(id ElementID) (*SubRegion, error) {
	if id.Region < 0 || id.Region >= len(es.Regions) {
		return nil, fmt.Errorf("element %v: region out of range", id)
	}
	r := es.Regions[id.Region]
	if id.SubRegion < 0 || id.SubRegion >= len(r.SubRegions) {
		return nil, fmt.Errorf("element %v: subregion out of range", id)
	}
	sr := r.SubRegions[id.SubRegion]
	if id.Index < 0 || id.Index >= sr.NumElements() {
		return nil, fmt.Errorf("element %v: index out of range", id)
	}
	return sr, nil
}

// Nodes returns the connectivity row of an element
func (es *ElementStore) Nodes(id ElementID) ([]int, error) {
	sr, err := es.SubRegion(id)
	if err != nil {
		return nil, err
	}
	return sr.Connectivity[id.Index], nil
}

// ForEachElement visits every element id in region, subregion, index order
func (es *ElementStore) ForEachElement(fn func(id ElementID) error) error {
	for kReg, r := range es.Regions {
		for kSubReg, sr := range r.SubRegions {
			for ke := range sr.Connectivity {
				if err := fn(ElementID{Region: kReg, SubRegion: kSubReg, Index: ke}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
