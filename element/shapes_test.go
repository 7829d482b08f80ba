package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeFor_FaceCounts(t *testing.T) {
	tests := []struct {
		g        GeometryType
		dims     Dimensionality
		nv       int
		numFaces int
	}{
		{Tri, D2, 3, 3},
		{Rectangle, D2, 4, 4},
		{Tet, D3, 4, 4},
		{Hex, D3, 8, 6},
		{Prism, D3, 6, 5},
		{Pyramid, D3, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			s, err := ShapeFor(tt.g)
			require.NoError(t, err)
			assert.Equal(t, tt.g, s.GeometryType())
			assert.Equal(t, tt.dims, s.Dimensions())
			assert.Equal(t, tt.nv, s.NumVertices())
			assert.Equal(t, tt.numFaces, s.NumFaces())
		})
	}
}

// Every vertex of a closed element must appear on at least dim faces, and
// every edge of a 3D element must be shared by exactly two faces.
func TestShapeFor_ClosedSurfaces(t *testing.T) {
	for _, g := range []GeometryType{Tet, Hex, Prism, Pyramid} {
		s, err := ShapeFor(g)
		require.NoError(t, err)
		edges := make(map[[2]int]int)
		for f := 0; f < s.NumFaces(); f++ {
			var verts []int
			for _, v := range s.FaceVertices(f) {
				if v != PaddingVertex {
					verts = append(verts, v)
				}
			}
			for i := range verts {
				a, b := verts[i], verts[(i+1)%len(verts)]
				if a > b {
					a, b = b, a
				}
				edges[[2]int{a, b}]++
			}
		}
		for e, n := range edges {
			assert.Equalf(t, 2, n, "%v edge %v shared by %d faces", g, e, n)
		}
	}
}

func TestShapeFor_PrismTrianglesArePadded(t *testing.T) {
	s, err := ShapeFor(Prism)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1, PaddingVertex}, s.FaceVertices(0))
	assert.Equal(t, []int{3, 4, 5, PaddingVertex}, s.FaceVertices(1))
	assert.Len(t, s.FaceVertices(2), 4)
}

func TestShapeFor_LineUnsupported(t *testing.T) {
	_, err := ShapeFor(Line)
	assert.Error(t, err)
}

func TestFaceVertices_ReturnsCopy(t *testing.T) {
	s, err := ShapeFor(Tet)
	require.NoError(t, err)
	fv := s.FaceVertices(0)
	fv[0] = 99
	assert.Equal(t, 0, s.FaceVertices(0)[0])
	assert.Nil(t, s.FaceVertices(4))
}

func TestNewShape_Validation(t *testing.T) {
	_, err := NewShape(Tri, D2, 3, [][]int{{0, 3}})
	assert.Error(t, err)
	_, err = NewShape(Tri, D2, 3, nil)
	assert.Error(t, err)
	_, err = NewShape(Tri, D2, 0, [][]int{{0, 1}})
	assert.Error(t, err)

	s, err := NewShape(Tri, D2, 3, [][]int{{0, 1}, {1, 2}, {2, 0}})
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumFaces())
}

func TestShapeForVertexCount(t *testing.T) {
	s, err := ShapeForVertexCount(D3, 6)
	require.NoError(t, err)
	assert.Equal(t, Prism, s.GeometryType())

	s, err = ShapeForVertexCount(D2, 4)
	require.NoError(t, err)
	assert.Equal(t, Rectangle, s.GeometryType())

	_, err = ShapeForVertexCount(D3, 10)
	assert.Error(t, err)
}

func TestParseGeometryType(t *testing.T) {
	for _, g := range []GeometryType{Tet, Hex, Prism, Pyramid, Tri, Rectangle, Line} {
		got, err := ParseGeometryType(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}
	got, err := ParseGeometryType("quadrilateral")
	require.NoError(t, err)
	assert.Equal(t, Rectangle, got)
	_, err = ParseGeometryType("octagon")
	assert.Error(t, err)
}
