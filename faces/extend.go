package faces

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/notargets/meshtopo/mesh"
)

// NewObjects lists what an extension created or changed. Every list is
// sorted.
type NewObjects struct {
	Faces         []int            // faces appended to the table
	ModifiedFaces []int            // existing faces whose second slot was filled
	Nodes         []int            // nodes added since the table was last built or extended
	Elements      []mesh.ElementID // elements of the extension batch
}

type facetRef struct {
	element   mesh.ElementID
	localFace int
}

// journal records an extension's changes so a failed call can be undone
type journal struct {
	faceCount int
	nodeCount int
	attached  []int
	refs      []facetRef
}

// Extend adds the facets of newly inserted elements to the table. g must
// cover all nodes the facets reference, including nodes appended since the
// table was built. Existing face indices are unchanged. On error the table
// is left exactly as it was.
func (t *Table) Extend(g Geometry, facets []mesh.Facet) (*NewObjects, error) {
	return t.extend(g, facets, &FaceOrderer{Geometry: g})
}

// Extend adds a batch of facets to t using the builder's source, ordering
// settings and set policy
func (fb *FaceBuilder) Extend(t *Table, facets []mesh.Facet) (*NewObjects, error) {
	var fo *FaceOrderer
	if !fb.SkipOrdering {
		fo = &FaceOrderer{Geometry: fb.Source, Tolerance: fb.Tolerance}
	}
	created, err := t.extend(fb.Source, facets, fo)
	if err != nil {
		return nil, err
	}
	if sets, ok := fb.Source.(NodeSetSource); ok {
		t.Sets = projectSets(t, sets, fb.SetPolicy)
	}
	fb.logger().Debug("face table extended",
		zap.Int("facets", len(facets)),
		zap.Int("newFaces", len(created.Faces)),
		zap.Int("modifiedFaces", len(created.ModifiedFaces)),
		zap.Int("newNodes", len(created.Nodes)))
	return created, nil
}

func (t *Table) extend(g Geometry, facets []mesh.Facet, fo *FaceOrderer) (*NewObjects, error) {
	numNodes := g.NumNodes()
	if numNodes < t.nodeCount {
		return nil, fmt.Errorf("extension source has %d nodes, table was built on %d", numNodes, t.nodeCount)
	}
	for _, f := range facets {
		if face, ok := t.toFaces.get(f.Element, f.LocalFace); ok {
			return nil, &MalformedFacetError{
				Element:   f.Element,
				LocalFace: f.LocalFace,
				Nodes:     f.Nodes,
				Reason:    fmt.Sprintf("local face already resolved to face %d", face),
			}
		}
	}

	j := &journal{faceCount: len(t.faces), nodeCount: t.nodeCount}
	t.nodeCount = numNodes
	bucket := t.seedBucket(facets)

	for _, f := range facets {
		if _, _, err := t.insertFacet(bucket, f, j); err != nil {
			t.rollback(j)
			return nil, err
		}
	}
	if fo != nil {
		for i := j.faceCount; i < len(t.faces); i++ {
			if err := fo.OrderFace(t, i); err != nil {
				t.rollback(j)
				return nil, err
			}
		}
	}
	return t.newObjects(j, facets), nil
}

// seedBucket indexes the existing faces that could match the batch: those
// whose lowest node is the lowest node of some facet in the batch
func (t *Table) seedBucket(facets []mesh.Facet) *lowestNodeBucket {
	bucket := newLowestNodeBucket(t.nodeCount)
	lows := make(map[int]struct{})
	for _, f := range facets {
		low := -1
		for _, n := range f.Nodes {
			if n != mesh.PaddingNode && n >= 0 && (low < 0 || n < low) {
				low = n
			}
		}
		if low >= 0 {
			lows[low] = struct{}{}
		}
	}
	for i := range t.faces {
		key := sortedKey(t.faces[i].Nodes)
		if _, ok := lows[key[0]]; !ok {
			continue
		}
		if t.faces[i].State() == TwoAdjacent {
			bucket.addClosed(key, i)
		} else {
			bucket.add(key, i)
		}
	}
	return bucket
}

func (t *Table) rollback(j *journal) {
	for _, face := range j.attached {
		if face < j.faceCount {
			t.faces[face].Adjacent[1] = mesh.NoElement
		}
	}
	t.faces = t.faces[:j.faceCount]
	for _, r := range j.refs {
		t.toFaces.clear(r.element, r.localFace)
	}
	t.nodeCount = j.nodeCount
}

func (t *Table) newObjects(j *journal, facets []mesh.Facet) *NewObjects {
	created := &NewObjects{
		Faces:         []int{},
		ModifiedFaces: []int{},
		Nodes:         []int{},
		Elements:      []mesh.ElementID{},
	}
	for i := j.faceCount; i < len(t.faces); i++ {
		created.Faces = append(created.Faces, i)
	}
	for _, face := range j.attached {
		if face < j.faceCount {
			created.ModifiedFaces = append(created.ModifiedFaces, face)
		}
	}
	slices.Sort(created.ModifiedFaces)

	nodes := make(map[int]struct{})
	elements := make(map[mesh.ElementID]struct{})
	for _, f := range facets {
		elements[f.Element] = struct{}{}
		for _, n := range f.Nodes {
			if n >= j.nodeCount {
				nodes[n] = struct{}{}
			}
		}
	}
	for n := range nodes {
		created.Nodes = append(created.Nodes, n)
	}
	slices.Sort(created.Nodes)
	for id := range elements {
		created.Elements = append(created.Elements, id)
	}
	slices.SortFunc(created.Elements, compareElements)
	return created
}
