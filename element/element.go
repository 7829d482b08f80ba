package element

import "fmt"

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // 0D elements (points)
	D1                       // 1D elements (lines, edges)
	D2                       // 2D elements (triangles, quadrilaterals)
	D3                       // 3D elements (tetrahedra, hexahedra, etc.)
)

// GeometryType identifies the shape of an element
type GeometryType uint8

const (
	// 3D element types
	Tet     GeometryType = iota // Tetrahedron
	Hex                         // Hexahedron
	Prism                       // Triangular prism
	Pyramid                     // Square-based pyramid

	// 2D element types
	Tri       // Triangle
	Rectangle // Rectangle/Quadrilateral

	// 1D element type
	Line // Line segment
)

var geometryNames = map[GeometryType]string{
	Tet:       "tet",
	Hex:       "hex",
	Prism:     "prism",
	Pyramid:   "pyramid",
	Tri:       "tri",
	Rectangle: "quad",
	Line:      "line",
}

func (g GeometryType) String() string {
	if name, ok := geometryNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GeometryType(%d)", uint8(g))
}

// ParseGeometryType maps a name as produced by String back to a GeometryType.
// "rectangle" and "quadrilateral" are accepted as aliases for quad.
func ParseGeometryType(name string) (GeometryType, error) {
	switch name {
	case "rectangle", "quadrilateral":
		return Rectangle, nil
	case "tetrahedron":
		return Tet, nil
	case "hexahedron":
		return Hex, nil
	case "triangle":
		return Tri, nil
	}
	for g, n := range geometryNames {
		if n == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", name)
}

// PaddingVertex marks an unused slot in a face vertex list. Prism and pyramid
// triangles are stored as padded quads so every face of a shape has the same
// slot count.
const PaddingVertex = -1

// Shape enumerates the facets of an element type. Every element variant must
// provide its local faces as ordered local vertex lists; the face builder
// depends on nothing else about the element.
type Shape interface {
	GeometryType() GeometryType
	Dimensions() Dimensionality
	NumVertices() int
	NumFaces() int
	// FaceVertices returns the local vertex numbers of a local face in the
	// element's canonical order. Entries may be PaddingVertex.
	FaceVertices(face int) []int
}
