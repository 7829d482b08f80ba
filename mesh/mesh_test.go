package mesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshtopo/element"
)

const twoHexYAML = `
nodes:
  - [0, 0, 0]
  - [1, 0, 0]
  - [1, 1, 0]
  - [0, 1, 0]
  - [0, 0, 1]
  - [1, 0, 1]
  - [1, 1, 1]
  - [0, 1, 1]
  - [2, 0, 0]
  - [2, 1, 0]
  - [2, 0, 1]
  - [2, 1, 1]
regions:
  - name: Domain
    subregions:
      - name: hexes
        type: hex
        elements:
          - [0, 1, 2, 3, 4, 5, 6, 7]
          - [1, 8, 9, 2, 5, 10, 11, 6]
sets:
  xmin: [0, 3, 4, 7]
  xmax: [11, 8, 9, 10, 8]
`

func TestLoadYAML_TwoHexes(t *testing.T) {
	m, err := LoadYAML(strings.NewReader(twoHexYAML))
	require.NoError(t, err)

	assert.Equal(t, 12, m.NumNodes())
	assert.Equal(t, 2, m.Elements.NumElements())
	require.Len(t, m.Elements.Regions, 1)
	sr := m.Elements.Regions[0].SubRegions[0]
	assert.Equal(t, element.Hex, sr.Shape.GeometryType())

	assert.Equal(t, []string{"xmax", "xmin"}, m.Nodes.SetNames())
	xmax, ok := m.Nodes.Set("xmax")
	require.True(t, ok)
	assert.Equal(t, []int{8, 9, 10, 11}, xmax)
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := map[string]string{
		"bad coordinates": "nodes:\n  - [0]\n",
		"unknown type": `
nodes: [[0,0],[1,0],[0,1]]
regions:
  - name: r
    subregions:
      - name: s
        type: octagon
        elements: [[0,1,2]]
`,
		"node out of range": `
nodes: [[0,0],[1,0],[0,1]]
regions:
  - name: r
    subregions:
      - name: s
        type: tri
        elements: [[0,1,5]]
`,
		"wrong vertex count": `
nodes: [[0,0],[1,0],[0,1]]
regions:
  - name: r
    subregions:
      - name: s
        type: tri
        elements: [[0,1]]
`,
		"unknown field": "nodes: [[0,0]]\nfaces: []\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestMesh_ForEachFacetOrder(t *testing.T) {
	m, err := LoadYAML(strings.NewReader(twoHexYAML))
	require.NoError(t, err)

	var facets []Facet
	require.NoError(t, m.ForEachFacet(func(f Facet) error {
		facets = append(facets, f)
		return nil
	}))
	require.Len(t, facets, 12)
	for i, f := range facets {
		assert.Equal(t, i/6, f.Element.Index)
		assert.Equal(t, i%6, f.LocalFace)
		assert.Equal(t, element.D3, f.Dim)
	}
	// hex face 0 is the bottom quad, listed 0-3-2-1
	assert.Equal(t, []int{0, 3, 2, 1}, facets[0].Nodes)
	assert.Equal(t, []int{1, 2, 9, 8}, facets[6].Nodes)

	// restartable: a second pass yields the same sequence
	var again []Facet
	require.NoError(t, m.ForEachFacet(func(f Facet) error {
		again = append(again, f)
		return nil
	}))
	assert.Equal(t, facets, again)
}

func TestMesh_PaddedPrismFacet(t *testing.T) {
	m := NewMesh()
	m.Nodes.Add(
		r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1},
		r3.Vec{Z: 1}, r3.Vec{X: 1, Z: 1}, r3.Vec{Y: 1, Z: 1},
	)
	shape, err := element.ShapeFor(element.Prism)
	require.NoError(t, err)
	sr := m.Elements.AddRegion("r").AddSubRegion("prisms", shape)
	_, err = sr.AddElement([]int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	facets, err := m.FacetsOf([]ElementID{{0, 0, 0}})
	require.NoError(t, err)
	require.Len(t, facets, 5)
	assert.Equal(t, []int{0, 2, 1, PaddingNode}, facets[0].Nodes)
	assert.Equal(t, []int{3, 4, 5, PaddingNode}, facets[1].Nodes)
}

func TestMesh_Centroid(t *testing.T) {
	m, err := LoadYAML(strings.NewReader(twoHexYAML))
	require.NoError(t, err)

	c, err := m.Centroid(ElementID{0, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, c.X, 1e-12)
	assert.InDelta(t, 0.5, c.Y, 1e-12)
	assert.InDelta(t, 0.5, c.Z, 1e-12)

	_, err = m.Centroid(ElementID{0, 0, 2})
	assert.Error(t, err)
	_, err = m.Centroid(NoElement)
	assert.Error(t, err)
}

func TestNodeStore_MatrixAndSets(t *testing.T) {
	ns := NewNodeStore([]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}})
	ids := ns.Add(r3.Vec{X: 7})
	assert.Equal(t, []int{2}, ids)

	xyz := ns.Matrix()
	r, c := xyz.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 5.0, xyz.At(1, 1))
	assert.Equal(t, 7.0, xyz.At(2, 0))

	assert.Error(t, ns.AddSet("bad", []int{3}))
	require.NoError(t, ns.AddSet("s", []int{2, 0, 2}))
	s, _ := ns.Set("s")
	assert.Equal(t, []int{0, 2}, s)
}

func TestElementID(t *testing.T) {
	assert.False(t, NoElement.IsSet())
	assert.Equal(t, "none", NoElement.String())
	a := ElementID{0, 1, 2}
	assert.Equal(t, "(0,1,2)", a.String())
	assert.True(t, a.Less(ElementID{0, 1, 3}))
	assert.True(t, a.Less(ElementID{1, 0, 0}))
	assert.False(t, a.Less(a))
}
