package faces

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/notargets/meshtopo/mesh"
)

// snapshotVersion is bumped whenever the encoded layout changes
const snapshotVersion = 1

// encMode uses Core Deterministic Encoding, so equal tables encode to
// identical bytes
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("faces: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// face and reference lists of large partitions exceed the default
		// 131072 element limit
		MaxArrayElements: math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic("faces: CBOR decoder initialization failed: " + err.Error())
	}
}

type snapshot struct {
	Version   int              `cbor:"1,keyasint"`
	NodeCount int              `cbor:"2,keyasint"`
	Faces     []snapshotFace   `cbor:"3,keyasint"`
	Refs      []snapshotRef    `cbor:"4,keyasint"`
	Sets      map[string][]int `cbor:"5,keyasint,omitempty"`
}

type snapshotFace struct {
	_        struct{} `cbor:",toarray"`
	Nodes    []int
	Adjacent [2][3]int
}

type snapshotRef struct {
	_         struct{} `cbor:",toarray"`
	Element   [3]int
	LocalFace int
	Face      int
}

func packID(id mesh.ElementID) [3]int {
	return [3]int{id.Region, id.SubRegion, id.Index}
}

func unpackID(v [3]int) mesh.ElementID {
	return mesh.ElementID{Region: v[0], SubRegion: v[1], Index: v[2]}
}

// EncodeSnapshot serializes the table to CBOR
func EncodeSnapshot(t *Table) ([]byte, error) {
	s := snapshot{
		Version:   snapshotVersion,
		NodeCount: t.nodeCount,
		Faces:     make([]snapshotFace, len(t.faces)),
		Sets:      t.Sets,
	}
	for i, f := range t.faces {
		s.Faces[i] = snapshotFace{
			Nodes:    f.Nodes,
			Adjacent: [2][3]int{packID(f.Adjacent[0]), packID(f.Adjacent[1])},
		}
	}
	for _, id := range t.toFaces.elements() {
		for lf, face := range t.toFaces[id] {
			if face < 0 {
				continue
			}
			s.Refs = append(s.Refs, snapshotRef{
				Element:   packID(id),
				LocalFace: lf,
				Face:      face,
			})
		}
	}
	data, err := encMode.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode face table: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a table written by EncodeSnapshot and validates it
func DecodeSnapshot(data []byte) (*Table, error) {
	var s snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode face table: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("face table snapshot version %d, want %d", s.Version, snapshotVersion)
	}

	t := newTable()
	t.nodeCount = s.NodeCount
	t.faces = make([]Face, len(s.Faces))
	for i, f := range s.Faces {
		t.faces[i] = Face{
			Nodes:    f.Nodes,
			Adjacent: [2]mesh.ElementID{unpackID(f.Adjacent[0]), unpackID(f.Adjacent[1])},
		}
	}
	for _, r := range s.Refs {
		// checked before set, which grows the element's row up to LocalFace
		if r.Face < 0 || r.Face >= len(t.faces) {
			return nil, fmt.Errorf("face table snapshot back reference %v refers to missing face %d", r.Element, r.Face)
		}
		id := unpackID(r.Element)
		if a := t.faces[r.Face].Adjacent; !id.IsSet() || (a[0] != id && a[1] != id) {
			return nil, fmt.Errorf("face table snapshot back reference %v is not adjacent to face %d", r.Element, r.Face)
		}
		// an element's local faces resolve to distinct faces, so a local
		// face index stays below the face count
		if r.LocalFace < 0 || r.LocalFace >= len(t.faces) {
			return nil, fmt.Errorf("face table snapshot back reference %v has local face %d", r.Element, r.LocalFace)
		}
		t.toFaces.set(id, r.LocalFace, r.Face)
	}
	for name, faces := range s.Sets {
		t.Sets[name] = faces
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("face table snapshot is inconsistent: %w", err)
	}
	return t, nil
}
