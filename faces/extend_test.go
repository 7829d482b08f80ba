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

var hexA = []int{0, 1, 2, 3, 4, 5, 6, 7}
var hexB = []int{1, 8, 9, 2, 5, 10, 11, 6}

// oneHexMesh is the first hex of twoHexYAML; growHex adds the second
func oneHexMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	return buildMesh(t, [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}, element.Hex, hexA)
}

func growHex(t *testing.T, m *mesh.Mesh) mesh.ElementID {
	t.Helper()
	m.Nodes.Add(r3.Vec{X: 2}, r3.Vec{X: 2, Y: 1}, r3.Vec{X: 2, Z: 1}, r3.Vec{X: 2, Y: 1, Z: 1})
	k, err := m.Elements.Regions[0].SubRegions[0].AddElement(hexB)
	require.NoError(t, err)
	return mesh.ElementID{Region: 0, SubRegion: 0, Index: k}
}

func TestExtend_MatchesFullBuild(t *testing.T) {
	m := oneHexMesh(t)
	tbl, err := Build(m, nil)
	require.NoError(t, err)
	require.Equal(t, 6, tbl.FaceCount())
	sharedFace, ok := tbl.ElementFace(elemA, 3)
	require.True(t, ok)

	id := growHex(t, m)
	facets, err := m.FacetsOf([]mesh.ElementID{id})
	require.NoError(t, err)
	created, err := tbl.Extend(m, facets)
	require.NoError(t, err)

	// Test 1: reported objects
	assert.Equal(t, []int{6, 7, 8, 9, 10}, created.Faces)
	assert.Equal(t, []int{sharedFace}, created.ModifiedFaces)
	assert.Equal(t, []int{8, 9, 10, 11}, created.Nodes)
	assert.Equal(t, []mesh.ElementID{elemB}, created.Elements)

	// Test 2: same table as building both hexes at once
	require.NoError(t, tbl.Validate())
	assert.Equal(t, 12, tbl.NodeCount())
	full, err := Build(m, nil)
	require.NoError(t, err)
	got, err := EncodeSnapshot(tbl)
	require.NoError(t, err)
	want, err := EncodeSnapshot(full)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	checkOutward(t, tbl, m)
}

func TestExtend_RollsBackOnError(t *testing.T) {
	m := oneHexMesh(t)
	tbl, err := Build(m, nil)
	require.NoError(t, err)
	before, err := EncodeSnapshot(tbl)
	require.NoError(t, err)

	id := growHex(t, m)
	facets, err := m.FacetsOf([]mesh.ElementID{id})
	require.NoError(t, err)
	// shared face first so an existing face is modified before the failure
	facets[0], facets[5] = facets[5], facets[0]
	facets = append(facets, mesh.Facet{Element: elemC, Dim: element.D3, Nodes: []int{0, 1, 99}})

	_, err = tbl.Extend(m, facets)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFacet))

	after, err := EncodeSnapshot(tbl)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, ok := tbl.ElementFace(id, 5)
	assert.False(t, ok)
	assert.Equal(t, 8, tbl.NodeCount())
	assert.Len(t, tbl.InteriorFaces(), 0)

	// the table is still usable after a failed extension
	facets, err = m.FacetsOf([]mesh.ElementID{id})
	require.NoError(t, err)
	_, err = tbl.Extend(m, facets)
	require.NoError(t, err)
	assert.Equal(t, 11, tbl.FaceCount())
}

func TestExtend_RejectsResolvedFacets(t *testing.T) {
	m := oneHexMesh(t)
	tbl, err := Build(m, nil)
	require.NoError(t, err)

	facets, err := m.FacetsOf([]mesh.ElementID{elemA})
	require.NoError(t, err)
	_, err = tbl.Extend(m, facets)
	assert.True(t, errors.Is(err, ErrMalformedFacet))
	assert.Equal(t, 6, tbl.FaceCount())
}

func TestExtend_NonManifoldAgainstExistingFace(t *testing.T) {
	m := buildMesh(t, twoQuadCoords, element.Rectangle, []int{0, 1, 4, 3}, []int{1, 2, 5, 4})
	tbl, err := Build(m, nil)
	require.NoError(t, err)

	m.Nodes.Add(r3.Vec{X: 1, Y: 2}, r3.Vec{Y: 2})
	k, err := m.Elements.Regions[0].SubRegions[0].AddElement([]int{1, 4, 6, 7})
	require.NoError(t, err)
	facets, err := m.FacetsOf([]mesh.ElementID{{Region: 0, SubRegion: 0, Index: k}})
	require.NoError(t, err)

	_, err = tbl.Extend(m, facets)
	assert.True(t, errors.Is(err, ErrNonManifoldFace))
	assert.Equal(t, 7, tbl.FaceCount())
	require.NoError(t, tbl.Validate())
}

func TestFaceBuilder_ExtendReprojectsSets(t *testing.T) {
	m := oneHexMesh(t)
	fb := NewFaceBuilder(m, nil)
	tbl, err := fb.Build()
	require.NoError(t, err)

	id := growHex(t, m)
	require.NoError(t, m.Nodes.AddSet("xmax", []int{8, 9, 10, 11}))
	facets, err := m.FacetsOf([]mesh.ElementID{id})
	require.NoError(t, err)
	_, err = fb.Extend(tbl, facets)
	require.NoError(t, err)

	require.Len(t, tbl.Sets["xmax"], 1)
	assert.ElementsMatch(t, []int{8, 9, 10, 11}, tbl.FaceNodes(tbl.Sets["xmax"][0]))
}

func TestExtend_SourceLostNodes(t *testing.T) {
	m := oneHexMesh(t)
	tbl, err := Build(m, nil)
	require.NoError(t, err)
	_, err = tbl.Extend(&facetSource{}, nil)
	assert.Error(t, err)
}
