package faces

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshtopo/element"
	"github.com/notargets/meshtopo/mesh"
)

// checkOutward verifies that every face normal points from slot 0 towards
// slot 1, or away from slot 0 on the boundary
func checkOutward(t *testing.T, tbl *Table, m *mesh.Mesh) {
	t.Helper()
	for i := 0; i < tbl.FaceCount(); i++ {
		e0, e1, interior := tbl.AdjacentElements(i)
		c0, err := m.Centroid(e0)
		require.NoError(t, err)
		dir := r3.Sub(tbl.Center(m, i), c0)
		if interior {
			c1, err := m.Centroid(e1)
			require.NoError(t, err)
			dir = r3.Sub(c1, c0)
		}
		if r3.Dot(tbl.Normal(m, i), dir) <= 0 {
			t.Errorf("face %d nodes %v: normal %v does not point away from element %v",
				i, tbl.FaceNodes(i), tbl.Normal(m, i), e0)
		}
	}
}

func TestOrder_OutwardNormals(t *testing.T) {
	tests := map[string]*mesh.Mesh{
		"tet":     buildMesh(t, tetCoords, element.Tet, []int{0, 1, 2, 3}),
		"prism":   buildMesh(t, prismCoords, element.Prism, []int{0, 1, 2, 3, 4, 5}),
		"quads":   buildMesh(t, twoQuadCoords, element.Rectangle, []int{0, 1, 4, 3}, []int{1, 2, 5, 4}),
		"tris":    buildMesh(t, twoQuadCoords, element.Tri, []int{0, 1, 4}, []int{0, 4, 3}),
		"pyramid": buildMesh(t, append(append([][3]float64{}, twoQuadCoords[:2]...), [3]float64{1, 1, 0}, [3]float64{0, 1, 0}, [3]float64{0.5, 0.5, 1}), element.Pyramid, []int{0, 1, 2, 3, 4}),
	}
	tests["hexes"] = twoHexMesh(t)
	for name, m := range tests {
		t.Run(name, func(t *testing.T) {
			tbl, err := Build(m, nil)
			require.NoError(t, err)
			checkOutward(t, tbl, m)
		})
	}
}

func TestOrder_EdgeSwapSymmetry(t *testing.T) {
	tests := []struct {
		name     string
		centroid r3.Vec
		want     []int
		normalY  float64
	}{
		// element above the x axis; the edge must run right to left
		{name: "above", centroid: r3.Vec{X: 0.5, Y: 0.5}, want: []int{1, 0}, normalY: -1},
		// element below; the complementary order
		{name: "below", centroid: r3.Vec{X: 0.5, Y: -0.5}, want: []int{0, 1}, normalY: 1},
	}
	for _, tt := range tests {
		for _, nodes := range [][]int{{0, 1}, {1, 0}} {
			src := &facetSource{
				positions: []r3.Vec{{}, {X: 1}},
				centroids: map[mesh.ElementID]r3.Vec{elemA: tt.centroid},
				facets:    []mesh.Facet{{Element: elemA, Dim: element.D2, Nodes: nodes}},
			}
			tbl, err := Build(src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tbl.FaceNodes(0), "%s, input %v", tt.name, nodes)
			n := tbl.Normal(src, 0)
			assert.InDelta(t, tt.normalY, n.Y, 1e-12)
			assert.InDelta(t, 1, tbl.Area(src, 0), 1e-12)
		}
	}
}

func TestOrder_AnchorIsCreatorFirstNode(t *testing.T) {
	tests := []struct {
		in, want []int
	}{
		{in: []int{0, 1, 2, 3}, want: []int{0, 1, 2, 3}},
		{in: []int{2, 3, 0, 1}, want: []int{2, 3, 0, 1}},
		// clockwise input is reversed but keeps its first node
		{in: []int{2, 1, 0, 3}, want: []int{2, 3, 0, 1}},
		{in: []int{3, 2, 1, 0}, want: []int{3, 0, 1, 2}},
	}
	for _, tt := range tests {
		tbl, err := Build(unitSquare(mesh.Facet{Element: elemA, Dim: element.D3, Nodes: tt.in}), nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tbl.FaceNodes(0), "input %v", tt.in)
	}
}

func TestOrder_DegenerateGeometry(t *testing.T) {
	tests := map[string]*facetSource{
		"collinear polygon": {
			positions: []r3.Vec{{}, {X: 1}, {X: 2}},
			centroids: map[mesh.ElementID]r3.Vec{elemA: {X: 1, Y: 1}},
			facets:    []mesh.Facet{{Element: elemA, Dim: element.D3, Nodes: []int{0, 1, 2}}},
		},
		"coincident nodes": {
			positions: []r3.Vec{{X: 1}, {X: 1}, {X: 1}},
			centroids: map[mesh.ElementID]r3.Vec{elemA: {Z: 1}},
			facets:    []mesh.Facet{{Element: elemA, Dim: element.D3, Nodes: []int{0, 1, 2}}},
		},
		"centroid in face plane": {
			positions: []r3.Vec{{}, {X: 1}, {Y: 1}},
			centroids: map[mesh.ElementID]r3.Vec{elemA: {X: 2, Y: 2}},
			facets:    []mesh.Facet{{Element: elemA, Dim: element.D3, Nodes: []int{0, 1, 2}}},
		},
		"centroid on edge line": {
			positions: []r3.Vec{{}, {X: 1}},
			centroids: map[mesh.ElementID]r3.Vec{elemA: {X: 3}},
			facets:    []mesh.Facet{{Element: elemA, Dim: element.D2, Nodes: []int{0, 1}}},
		},
		"centroid on face centroid": {
			positions: []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}},
			centroids: map[mesh.ElementID]r3.Vec{elemA: {X: 0.5, Y: 0.5}},
			facets:    []mesh.Facet{{Element: elemA, Dim: element.D3, Nodes: []int{0, 1, 3, 2}}},
		},
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(src, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDegenerateGeometry), err.Error())
			var dg *DegenerateGeometryError
			require.True(t, errors.As(err, &dg))
			assert.Equal(t, 0, dg.Face)
			assert.Equal(t, elemA, dg.Element)
			assert.NotEmpty(t, dg.Reason)
		})
	}
}

func TestOrder_MissingCentroid(t *testing.T) {
	src := unitSquare(mesh.Facet{Element: elemC, Dim: element.D3, Nodes: []int{0, 1, 2, 3}})
	_, err := Build(src, nil)
	assert.Error(t, err)
}

func TestGeometry_CenterAndArea(t *testing.T) {
	m := twoHexMesh(t)
	tbl, err := Build(m, nil)
	require.NoError(t, err)
	for i := 0; i < tbl.FaceCount(); i++ {
		assert.InDelta(t, 1, tbl.Area(m, i), 1e-12, "face %d", i)
		assert.InDelta(t, 1, r3.Norm(tbl.Normal(m, i)), 1e-12, "face %d", i)
	}
	shared := tbl.InteriorFaces()[0]
	c := tbl.Center(m, shared)
	assert.InDelta(t, 1, c.X, 1e-12)
	assert.InDelta(t, 0.5, c.Y, 1e-12)
	assert.InDelta(t, 0.5, c.Z, 1e-12)
	// normal of the shared face points from the creator into its neighbor
	assert.InDelta(t, 1, tbl.Normal(m, shared).X, 1e-12)
}
