package faces

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshtopo/mesh"
)

// Geometry supplies node coordinates and element centroids
type Geometry interface {
	NumNodes() int
	Position(node int) r3.Vec
	Centroid(id mesh.ElementID) (r3.Vec, error)
}

// Source is everything the builder reads from a partition's mesh.
// ForEachFacet must visit facets in a fixed, repeatable order.
type Source interface {
	Geometry
	ForEachFacet(fn func(f mesh.Facet) error) error
}

// NodeSetSource is implemented by sources that carry named node sets
type NodeSetSource interface {
	NodeSetNames() []string
	NodeSet(name string) ([]int, bool)
}

// FaceBuilder derives the face table of a partition from its element faces
type FaceBuilder struct {
	Source Source
	Logger *zap.Logger

	// SkipOrdering leaves face nodes in the order seen by the creating
	// element instead of running the FaceOrderer
	SkipOrdering bool
	// Tolerance is passed to the FaceOrderer, 0 selects DefaultTolerance
	Tolerance float64
	// SetPolicy decides face membership when projecting node sets
	SetPolicy SetPolicy
}

// NewFaceBuilder creates a builder with default settings
func NewFaceBuilder(src Source, logger *zap.Logger) *FaceBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FaceBuilder{
		Source:    src,
		Logger:    logger,
		SetPolicy: AllNodes,
	}
}

// Build builds, orders and set-projects the face table of src
func Build(src Source, logger *zap.Logger) (*Table, error) {
	return NewFaceBuilder(src, logger).Build()
}

// Build runs a single pass over the source's facets, deduplicating faces
// through a lowest-node bucket, then orders every face's nodes.
func (fb *FaceBuilder) Build() (*Table, error) {
	if fb.Source == nil {
		return nil, fmt.Errorf("face builder has no source")
	}
	log := fb.logger()

	t := newTable()
	t.nodeCount = fb.Source.NumNodes()
	bucket := newLowestNodeBucket(t.nodeCount)

	numFacets := 0
	err := fb.Source.ForEachFacet(func(f mesh.Facet) error {
		numFacets++
		_, _, err := t.insertFacet(bucket, f, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !fb.SkipOrdering {
		fo := &FaceOrderer{Geometry: fb.Source, Tolerance: fb.Tolerance}
		if err := fo.OrderAll(t); err != nil {
			return nil, err
		}
	}

	if sets, ok := fb.Source.(NodeSetSource); ok {
		t.Sets = projectSets(t, sets, fb.SetPolicy)
	}

	log.Debug("face table built",
		zap.Int("facets", numFacets),
		zap.Int("faces", t.FaceCount()),
		zap.Int("boundary", len(t.BoundaryFaces())),
		zap.Int("sets", len(t.Sets)))
	return t, nil
}

func (fb *FaceBuilder) logger() *zap.Logger {
	if fb.Logger == nil {
		return zap.NewNop()
	}
	return fb.Logger
}

// insertFacet resolves one element-face incidence to a face, creating the
// face when no existing face has the same node set. Changes are recorded in
// j when it is non-nil.
func (t *Table) insertFacet(b *lowestNodeBucket, f mesh.Facet, j *journal) (face int, created bool, err error) {
	nodes, err := normalizeFacet(f, t.nodeCount)
	if err != nil {
		return -1, false, err
	}
	key := sortedKey(nodes)

	if face, ok := b.takePending(key); ok {
		if t.faces[face].Adjacent[0] == f.Element {
			return -1, false, &MalformedFacetError{
				Element:   f.Element,
				LocalFace: f.LocalFace,
				Nodes:     f.Nodes,
				Reason:    fmt.Sprintf("element already owns face %d with the same nodes", face),
			}
		}
		if !t.faces[face].attach(f.Element) {
			return -1, false, t.nonManifold(face, f)
		}
		t.toFaces.set(f.Element, f.LocalFace, face)
		if j != nil {
			j.attached = append(j.attached, face)
			j.refs = append(j.refs, facetRef{f.Element, f.LocalFace})
		}
		return face, false, nil
	}

	if face, ok := b.findClosed(key); ok {
		return -1, false, t.nonManifold(face, f)
	}

	face = t.addFace(nodes, f.Element)
	b.add(key, face)
	t.toFaces.set(f.Element, f.LocalFace, face)
	if j != nil {
		j.refs = append(j.refs, facetRef{f.Element, f.LocalFace})
	}
	return face, true, nil
}

func (t *Table) nonManifold(face int, f mesh.Facet) error {
	return &NonManifoldFaceError{
		Face:      face,
		Nodes:     t.FaceNodes(face),
		Adjacent:  t.faces[face].Adjacent,
		Element:   f.Element,
		LocalFace: f.LocalFace,
	}
}

// normalizeFacet strips padding entries and checks the remaining nodes.
// The returned slice keeps the facet's order.
func normalizeFacet(f mesh.Facet, numNodes int) ([]int, error) {
	nodes := make([]int, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		if n == mesh.PaddingNode {
			continue
		}
		if n < 0 || n >= numNodes {
			return nil, &MalformedFacetError{
				Element:   f.Element,
				LocalFace: f.LocalFace,
				Nodes:     f.Nodes,
				Reason:    fmt.Sprintf("node %d out of range [0,%d)", n, numNodes),
			}
		}
		nodes = append(nodes, n)
	}

	minNodes := 2
	if f.Dim > 2 {
		minNodes = int(f.Dim)
	}
	if len(nodes) < minNodes {
		return nil, &MalformedFacetError{
			Element:   f.Element,
			LocalFace: f.LocalFace,
			Nodes:     f.Nodes,
			Reason:    fmt.Sprintf("%d nodes after removing padding, need at least %d", len(nodes), minNodes),
		}
	}

	key := sortedKey(nodes)
	for i := 1; i < len(key); i++ {
		if key[i] == key[i-1] {
			return nil, &MalformedFacetError{
				Element:   f.Element,
				LocalFace: f.LocalFace,
				Nodes:     f.Nodes,
				Reason:    fmt.Sprintf("node %d repeated", key[i]),
			}
		}
	}
	return nodes, nil
}
