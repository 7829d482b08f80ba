// Package faces builds the deduplicated face table of a mesh partition:
// unique faces, face to element adjacency, element to face back references
// and an oriented node order per face.
package faces

import (
	"slices"

	"github.com/notargets/meshtopo/mesh"
)

// AdjacencyState is the fill state of a face's two adjacency slots
type AdjacencyState uint8

const (
	Empty AdjacencyState = iota
	OneAdjacent
	TwoAdjacent
)

func (s AdjacencyState) String() string {
	switch s {
	case Empty:
		return "empty"
	case OneAdjacent:
		return "one-adjacent"
	case TwoAdjacent:
		return "two-adjacent"
	}
	return "invalid"
}

// Face is one unique geometric face. Adjacent[0] is the element that created
// the face and orients it; Adjacent[1] is mesh.NoElement on boundary faces.
type Face struct {
	Nodes    []int
	Adjacent [2]mesh.ElementID
}

func newFace(nodes []int) Face {
	return Face{
		Nodes:    nodes,
		Adjacent: [2]mesh.ElementID{mesh.NoElement, mesh.NoElement},
	}
}

// State reports how many adjacency slots are filled
func (f *Face) State() AdjacencyState {
	switch {
	case !f.Adjacent[0].IsSet():
		return Empty
	case !f.Adjacent[1].IsSet():
		return OneAdjacent
	default:
		return TwoAdjacent
	}
}

// attach fills the next free slot. It refuses to go past TwoAdjacent; the
// caller turns false into a NonManifoldFaceError.
func (f *Face) attach(id mesh.ElementID) bool {
	switch f.State() {
	case Empty:
		f.Adjacent[0] = id
	case OneAdjacent:
		f.Adjacent[1] = id
	default:
		return false
	}
	return true
}

// Table is the face table of one partition. It is filled by FaceBuilder and
// read-only afterwards, except through Extend.
type Table struct {
	faces     []Face
	toFaces   elementFaces
	nodeCount int

	// Sets holds node sets projected onto faces, by set name
	Sets map[string][]int
}

func newTable() *Table {
	return &Table{toFaces: make(elementFaces), Sets: make(map[string][]int)}
}

// FaceCount returns the number of faces
func (t *Table) FaceCount() int { return len(t.faces) }

// NodeCount returns the number of nodes the table was built or last
// extended against
func (t *Table) NodeCount() int { return t.nodeCount }

// Face returns a copy of face i
func (t *Table) Face(i int) Face {
	f := t.faces[i]
	f.Nodes = slices.Clone(f.Nodes)
	return f
}

// FaceNodes returns a copy of the ordered node list of face i
func (t *Table) FaceNodes(i int) []int {
	return slices.Clone(t.faces[i].Nodes)
}

// AdjacentElements returns both adjacency slots of face i; ok is false when
// the second slot is unset (boundary face)
func (t *Table) AdjacentElements(i int) (e0, e1 mesh.ElementID, ok bool) {
	f := &t.faces[i]
	return f.Adjacent[0], f.Adjacent[1], f.Adjacent[1].IsSet()
}

// IsBoundary reports whether face i has a single adjacent element
func (t *Table) IsBoundary(i int) bool {
	return !t.faces[i].Adjacent[1].IsSet()
}

// BoundaryFaces returns the indices of all boundary faces in ascending order
func (t *Table) BoundaryFaces() []int {
	var out []int
	for i := range t.faces {
		if t.IsBoundary(i) {
			out = append(out, i)
		}
	}
	return out
}

// InteriorFaces returns the indices of all faces with two adjacent elements
func (t *Table) InteriorFaces() []int {
	var out []int
	for i := range t.faces {
		if !t.IsBoundary(i) {
			out = append(out, i)
		}
	}
	return out
}

// ElementFace returns the face of an element's local face slot
func (t *Table) ElementFace(id mesh.ElementID, localFace int) (int, bool) {
	return t.toFaces.get(id, localFace)
}

// ElementFaces returns the faces of an element indexed by local face slot,
// -1 for slots that were never assigned
func (t *Table) ElementFaces(id mesh.ElementID) []int {
	return t.toFaces.row(id)
}

func (t *Table) addFace(nodes []int, id mesh.ElementID) int {
	f := newFace(nodes)
	f.attach(id)
	t.faces = append(t.faces, f)
	return len(t.faces) - 1
}

// elementFaces stores element to face back references, one row per element
// indexed by local face and grown on demand
type elementFaces map[mesh.ElementID][]int

func (ef elementFaces) set(id mesh.ElementID, localFace, face int) {
	row := ef[id]
	for len(row) <= localFace {
		row = append(row, -1)
	}
	row[localFace] = face
	ef[id] = row
}

func (ef elementFaces) row(id mesh.ElementID) []int {
	row, ok := ef[id]
	if !ok {
		return nil
	}
	return slices.Clone(row)
}

func (ef elementFaces) get(id mesh.ElementID, localFace int) (int, bool) {
	row := ef[id]
	if localFace < 0 || localFace >= len(row) || row[localFace] < 0 {
		return -1, false
	}
	return row[localFace], true
}

// clear resets a back reference, used when an extension is rolled back.
// Rows left without any reference are dropped.
func (ef elementFaces) clear(id mesh.ElementID, localFace int) {
	if _, ok := ef.get(id, localFace); !ok {
		return
	}
	row := ef[id]
	row[localFace] = -1
	for _, face := range row {
		if face >= 0 {
			return
		}
	}
	delete(ef, id)
}

// elements returns the elements holding back references, in ElementID order
func (ef elementFaces) elements() []mesh.ElementID {
	ids := make([]mesh.ElementID, 0, len(ef))
	for id := range ef {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareElements)
	return ids
}

func compareElements(a, b mesh.ElementID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

// sortedKey returns the sorted copy of a node list used for comparisons
func sortedKey(nodes []int) []int {
	key := slices.Clone(nodes)
	slices.Sort(key)
	return key
}
