package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshtopo/element"
)

// gambitOrder maps gmsh vertex slots to Gambit neutral connectivity slots.
// Gambit lists brick and pyramid base corners in lexicographic order
// (x fastest), gmsh goes around the base. Other shapes agree.
var gambitOrder = map[element.GeometryType][]int{
	element.Hex:     {0, 1, 3, 2, 4, 5, 7, 6},
	element.Pyramid: {0, 1, 3, 2, 4},
}

// fromGambit returns nodes in gmsh order
func fromGambit(g element.GeometryType, nodes []int) []int {
	order, ok := gambitOrder[g]
	if !ok || len(order) != len(nodes) {
		return nodes
	}
	out := make([]int, len(nodes))
	for i, k := range order {
		out[i] = nodes[k]
	}
	return out
}

// ReadMeshFile reads a Gambit neutral or Gmsh file through the gocfd readers.
// Only elements of the highest dimension present are kept (lower dimension
// elements in these formats tag boundaries); they land in one region, one
// subregion per element type in order of first appearance. Gambit bricks
// and pyramids are renumbered to the gmsh vertex order of the shapes.
func ReadMeshFile(path string) (*Mesh, error) {
	msh, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, err
	}
	m := NewMesh()
	for i, v := range msh.Vertices {
		if len(v) < 3 {
			return nil, fmt.Errorf("%s: vertex %d has %d coordinates", path, i, len(v))
		}
		m.Nodes.Add(r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}
	if len(msh.ElementTypes) < len(msh.EtoV) {
		return nil, fmt.Errorf("%s: %d element types for %d elements", path,
			len(msh.ElementTypes), len(msh.EtoV))
	}

	topDim := 0
	for k := range msh.EtoV {
		if d := int(msh.ElementTypes[k].GetDimension()); d > topDim {
			topDim = d
		}
	}
	if topDim < 2 {
		return nil, fmt.Errorf("%s: no 2D or 3D elements", path)
	}

	gambit := strings.ToLower(filepath.Ext(path)) == ".neu"
	region := m.Elements.AddRegion("Domain")
	bySubRegion := make(map[element.GeometryType]*SubRegion)
	for k, nodes := range msh.EtoV {
		if int(msh.ElementTypes[k].GetDimension()) != topDim {
			continue
		}
		shape, err := element.ShapeForVertexCount(element.Dimensionality(topDim), len(nodes))
		if err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", path, k, err)
		}
		sr, ok := bySubRegion[shape.GeometryType()]
		if !ok {
			sr = region.AddSubRegion(shape.GeometryType().String(), shape)
			bySubRegion[shape.GeometryType()] = sr
		}
		if gambit {
			nodes = fromGambit(shape.GeometryType(), nodes)
		}
		if _, err := sr.AddElement(nodes); err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", path, k, err)
		}
	}
	return m, nil
}
