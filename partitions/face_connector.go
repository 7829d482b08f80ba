package partitions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FaceConnector pairs the boundary faces of partition-local face tables
// that are the same face of the global mesh. It runs after the local builds
// and never changes the local tables.
type FaceConnector struct {
	NumPartitions int
	Parts         []*LocalPartition

	// Pick/Place indices per partition
	PickIndices  [][]PickBuffer  // [sourcePartition][targetPartition]
	PlaceIndices [][]PlaceBuffer // [targetPartition][sourcePartition]

	// DomainBoundary lists, per partition, the boundary faces with no
	// partner in any other partition
	DomainBoundary [][]int
}

// PickBuffer lists local faces of the source partition to send
type PickBuffer struct {
	Indices         []int // Local face indices in the source partition
	TargetPartition int
}

// PlaceBuffer lists the local faces that receive, aligned with the
// matching PickBuffer
type PlaceBuffer struct {
	Indices         []int // Local face indices in the target partition
	SourcePartition int
}

type partitionFace struct {
	partition, face int
}

// NewFaceConnector creates a face connector from partitions whose face
// tables have been built
func NewFaceConnector(parts []*LocalPartition) (*FaceConnector, error) {
	for i, lp := range parts {
		if lp == nil || lp.Faces == nil {
			return nil, fmt.Errorf("partition %d has no face table", i)
		}
		if lp.ID != i {
			return nil, fmt.Errorf("partition at position %d has ID %d", i, lp.ID)
		}
	}

	fc := &FaceConnector{
		NumPartitions: len(parts),
		Parts:         parts,
	}
	fc.initializeBuffers()

	if err := fc.BuildIndices(); err != nil {
		return nil, err
	}
	return fc, nil
}

// initializeBuffers creates empty pick and place buffer structures
func (fc *FaceConnector) initializeBuffers() {
	fc.PickIndices = make([][]PickBuffer, fc.NumPartitions)
	fc.PlaceIndices = make([][]PlaceBuffer, fc.NumPartitions)
	fc.DomainBoundary = make([][]int, fc.NumPartitions)

	for p := 0; p < fc.NumPartitions; p++ {
		fc.PickIndices[p] = make([]PickBuffer, fc.NumPartitions)
		fc.PlaceIndices[p] = make([]PlaceBuffer, fc.NumPartitions)
		fc.DomainBoundary[p] = make([]int, 0)

		for q := 0; q < fc.NumPartitions; q++ {
			fc.PickIndices[p][q] = PickBuffer{
				Indices:         make([]int, 0),
				TargetPartition: q,
			}
			fc.PlaceIndices[p][q] = PlaceBuffer{
				Indices:         make([]int, 0),
				SourcePartition: q,
			}
		}
	}
}

// globalKey returns the sorted global node ids of a local face as a string
func (fc *FaceConnector) globalKey(p, face int) string {
	lp := fc.Parts[p]
	nodes := lp.GlobalNodes(lp.Faces.FaceNodes(face))
	sort.Ints(nodes)
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// BuildIndices matches boundary faces across partitions. For every pair of
// partitions p and q, PickIndices[p][q] and PlaceIndices[q][p] list the
// faces of p and q that coincide, in the same order.
func (fc *FaceConnector) BuildIndices() error {
	matches := make(map[string][]partitionFace)
	var keys []string
	for p := 0; p < fc.NumPartitions; p++ {
		for _, face := range fc.Parts[p].Faces.BoundaryFaces() {
			key := fc.globalKey(p, face)
			if _, ok := matches[key]; !ok {
				keys = append(keys, key)
			}
			matches[key] = append(matches[key], partitionFace{p, face})
		}
	}

	for _, key := range keys {
		m := matches[key]
		switch len(m) {
		case 1:
			fc.DomainBoundary[m[0].partition] = append(fc.DomainBoundary[m[0].partition], m[0].face)
		case 2:
			a, b := m[0], m[1]
			if a.partition == b.partition {
				return fmt.Errorf("partition %d: boundary faces %d and %d share global nodes %s",
					a.partition, a.face, b.face, key)
			}
			fc.connect(a, b)
			fc.connect(b, a)
		default:
			return fmt.Errorf("global face %s is a boundary face of %d partition faces, at most 2 allowed",
				key, len(m))
		}
	}
	return nil
}

// connect records that src sends its face value to dst
func (fc *FaceConnector) connect(src, dst partitionFace) {
	pick := &fc.PickIndices[src.partition][dst.partition]
	pick.Indices = append(pick.Indices, src.face)
	place := &fc.PlaceIndices[dst.partition][src.partition]
	place.Indices = append(place.Indices, dst.face)
}

// GetPickIndices returns pick indices for sending from source to target partition
func (fc *FaceConnector) GetPickIndices(sourcePartition, targetPartition int) []int {
	if sourcePartition < 0 || sourcePartition >= fc.NumPartitions ||
		targetPartition < 0 || targetPartition >= fc.NumPartitions {
		return nil
	}
	return fc.PickIndices[sourcePartition][targetPartition].Indices
}

// GetPlaceIndices returns place indices for target partition receiving from source
func (fc *FaceConnector) GetPlaceIndices(targetPartition, sourcePartition int) []int {
	if targetPartition < 0 || targetPartition >= fc.NumPartitions ||
		sourcePartition < 0 || sourcePartition >= fc.NumPartitions {
		return nil
	}
	return fc.PlaceIndices[targetPartition][sourcePartition].Indices
}

// Verify checks index validity, symmetry and conservation
func (fc *FaceConnector) Verify() error {
	// Verify 1: every index is a boundary face of its partition
	for p := 0; p < fc.NumPartitions; p++ {
		tbl := fc.Parts[p].Faces
		for q := 0; q < fc.NumPartitions; q++ {
			for _, idx := range fc.PickIndices[p][q].Indices {
				if idx < 0 || idx >= tbl.FaceCount() || !tbl.IsBoundary(idx) {
					return fmt.Errorf("invalid pick index %d for partition %d", idx, p)
				}
			}
			for _, idx := range fc.PlaceIndices[p][q].Indices {
				if idx < 0 || idx >= tbl.FaceCount() || !tbl.IsBoundary(idx) {
					return fmt.Errorf("invalid place index %d for partition %d", idx, p)
				}
			}
		}
	}

	// Verify 2: correspondence and symmetry
	for p := 0; p < fc.NumPartitions; p++ {
		for q := 0; q < fc.NumPartitions; q++ {
			pick := fc.PickIndices[p][q].Indices
			place := fc.PlaceIndices[q][p].Indices
			if len(pick) != len(place) {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					p, q, len(pick), q, p, len(place))
			}
			if len(pick) != len(fc.PickIndices[q][p].Indices) {
				return fmt.Errorf("asymmetric exchange: %d → %d sends %d faces, %d → %d sends %d",
					p, q, len(pick), q, p, len(fc.PickIndices[q][p].Indices))
			}
			for i := range pick {
				if fc.globalKey(p, pick[i]) != fc.globalKey(q, place[i]) {
					return fmt.Errorf("pick[%d][%d][%d] and place[%d][%d][%d] are different faces",
						p, q, i, q, p, i)
				}
			}
		}
	}

	// Verify 3: conservation, each boundary face is either sent once or a
	// domain boundary
	for p := 0; p < fc.NumPartitions; p++ {
		sent := len(fc.DomainBoundary[p])
		for q := 0; q < fc.NumPartitions; q++ {
			sent += len(fc.PickIndices[p][q].Indices)
		}
		if boundary := len(fc.Parts[p].Faces.BoundaryFaces()); sent != boundary {
			return fmt.Errorf("conservation error: partition %d accounts for %d faces, has %d boundary faces",
				p, sent, boundary)
		}
	}
	return nil
}
