package element

import "fmt"

const pad = PaddingVertex

// Face tables follow the gmsh vertex numbering used by the gocfd readers:
//   hex:     0-3 bottom (counterclockwise), 4-7 top
//   prism:   0-2 bottom, 3-5 top
//   pyramid: 0-3 base, 4 apex
var (
	triFaces = [][]int{
		{0, 1}, {1, 2}, {2, 0},
	}
	quadFaces = [][]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
	}
	tetFaces = [][]int{
		{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3},
	}
	hexFaces = [][]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
	}
	prismFaces = [][]int{
		{0, 2, 1, pad},
		{3, 4, 5, pad},
		{0, 1, 4, 3},
		{1, 2, 5, 4},
		{2, 0, 3, 5},
	}
	pyramidFaces = [][]int{
		{0, 3, 2, 1},
		{0, 1, 4, pad},
		{1, 2, 4, pad},
		{2, 3, 4, pad},
		{3, 0, 4, pad},
	}
)

// TableShape is a Shape defined by an explicit face table
type TableShape struct {
	geometry    GeometryType
	dims        Dimensionality
	numVertices int
	faces       [][]int
}

// NewShape builds a Shape from a face table and checks that every entry is
// either PaddingVertex or a local vertex in [0, numVertices).
func NewShape(g GeometryType, dims Dimensionality, numVertices int, faces [][]int) (*TableShape, error) {
	if numVertices <= 0 {
		return nil, fmt.Errorf("shape %v: invalid vertex count %d", g, numVertices)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("shape %v: no faces", g)
	}
	table := make([][]int, len(faces))
	for f, verts := range faces {
		for _, v := range verts {
			if v == PaddingVertex {
				continue
			}
			if v < 0 || v >= numVertices {
				return nil, fmt.Errorf("shape %v: face %d references vertex %d, have %d vertices",
					g, f, v, numVertices)
			}
		}
		table[f] = append([]int(nil), verts...)
	}
	return &TableShape{
		geometry:    g,
		dims:        dims,
		numVertices: numVertices,
		faces:       table,
	}, nil
}

func (s *TableShape) GeometryType() GeometryType { return s.geometry }
func (s *TableShape) Dimensions() Dimensionality { return s.dims }
func (s *TableShape) NumVertices() int           { return s.numVertices }
func (s *TableShape) NumFaces() int              { return len(s.faces) }

// FaceVertices returns a copy of the face's local vertex list, nil when face
// is out of range
func (s *TableShape) FaceVertices(face int) []int {
	if face < 0 || face >= len(s.faces) {
		return nil
	}
	return append([]int(nil), s.faces[face]...)
}

var builtin = map[GeometryType]*TableShape{}

func init() {
	for _, def := range []struct {
		g     GeometryType
		dims  Dimensionality
		nv    int
		faces [][]int
	}{
		{Tri, D2, 3, triFaces},
		{Rectangle, D2, 4, quadFaces},
		{Tet, D3, 4, tetFaces},
		{Hex, D3, 8, hexFaces},
		{Prism, D3, 6, prismFaces},
		{Pyramid, D3, 5, pyramidFaces},
	} {
		s, err := NewShape(def.g, def.dims, def.nv, def.faces)
		if err != nil {
			panic(err)
		}
		builtin[def.g] = s
	}
}

// ShapeFor returns the linear built-in shape for a geometry type. Line has no
// facets of two or more nodes and is not supported.
func ShapeFor(g GeometryType) (Shape, error) {
	s, ok := builtin[g]
	if !ok {
		return nil, fmt.Errorf("no face table for element type %v", g)
	}
	return s, nil
}

// ShapeForVertexCount picks the linear shape with the given dimension and
// vertex count, as reported by mesh readers that only carry those two numbers.
func ShapeForVertexCount(dims Dimensionality, numVertices int) (Shape, error) {
	for _, g := range []GeometryType{Tri, Rectangle, Tet, Pyramid, Prism, Hex} {
		s := builtin[g]
		if s.dims == dims && s.numVertices == numVertices {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no linear %dD element with %d vertices", dims, numVertices)
}
