package faces

import (
	"errors"
	"fmt"

	"github.com/notargets/meshtopo/mesh"
)

// Sentinels for errors.Is; the typed errors below unwrap to them.
var (
	ErrMalformedFacet     = errors.New("malformed facet")
	ErrNonManifoldFace    = errors.New("non-manifold face")
	ErrDegenerateGeometry = errors.New("degenerate face geometry")
)

// MalformedFacetError reports an element face that cannot describe a face
type MalformedFacetError struct {
	Element   mesh.ElementID
	LocalFace int
	Nodes     []int // as enumerated, padding included
	Reason    string
}

func (e *MalformedFacetError) Error() string {
	return fmt.Sprintf("malformed facet: element %v local face %d nodes %v: %s",
		e.Element, e.LocalFace, e.Nodes, e.Reason)
}

func (e *MalformedFacetError) Unwrap() error { return ErrMalformedFacet }

// NonManifoldFaceError reports a third element claiming a face that already
// has two adjacent elements
type NonManifoldFaceError struct {
	Face      int
	Nodes     []int
	Adjacent  [2]mesh.ElementID
	Element   mesh.ElementID
	LocalFace int
}

func (e *NonManifoldFaceError) Error() string {
	return fmt.Sprintf("non-manifold face %d nodes %v: element %v local face %d matches a face already shared by %v and %v",
		e.Face, e.Nodes, e.Element, e.LocalFace, e.Adjacent[0], e.Adjacent[1])
}

func (e *NonManifoldFaceError) Unwrap() error { return ErrNonManifoldFace }

// DegenerateGeometryError reports a face whose node order cannot be fixed
// from its coordinates
type DegenerateGeometryError struct {
	Face    int
	Element mesh.ElementID
	Nodes   []int
	Reason  string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate face %d (element %v) nodes %v: %s",
		e.Face, e.Element, e.Nodes, e.Reason)
}

func (e *DegenerateGeometryError) Unwrap() error { return ErrDegenerateGeometry }
