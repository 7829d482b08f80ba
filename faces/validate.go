package faces

import (
	"fmt"
	"strings"
)

// Validate checks the table's structural invariants: node sets are unique,
// every face has one or two adjacent elements with slot 0 filled first,
// back references agree with adjacency, and projected sets list existing
// faces in ascending order.
func (t *Table) Validate() error {
	seen := make(map[string]int, len(t.faces))
	refCount := make([]int, len(t.faces))

	for i := range t.faces {
		f := &t.faces[i]
		if len(f.Nodes) < 2 {
			return fmt.Errorf("face %d has %d nodes", i, len(f.Nodes))
		}
		for _, n := range f.Nodes {
			if n < 0 || n >= t.nodeCount {
				return fmt.Errorf("face %d node %d out of range [0,%d)", i, n, t.nodeCount)
			}
		}
		key := sortedKey(f.Nodes)
		for k := 1; k < len(key); k++ {
			if key[k] == key[k-1] {
				return fmt.Errorf("face %d repeats node %d", i, key[k])
			}
		}
		k := keyString(key)
		if other, ok := seen[k]; ok {
			return fmt.Errorf("faces %d and %d share node set %v", other, i, key)
		}
		seen[k] = i

		for _, id := range f.Adjacent {
			if id.IsSet() && (id.Region < 0 || id.SubRegion < 0 || id.Index < 0) {
				return fmt.Errorf("face %d has invalid adjacent element %v", i, id)
			}
		}
		switch f.State() {
		case Empty:
			if f.Adjacent[1].IsSet() {
				return fmt.Errorf("face %d has slot 1 set without slot 0", i)
			}
			return fmt.Errorf("face %d has no adjacent element", i)
		case TwoAdjacent:
			if f.Adjacent[0] == f.Adjacent[1] {
				return fmt.Errorf("face %d lists element %v twice", i, f.Adjacent[0])
			}
		}
	}

	for id, row := range t.toFaces {
		if !id.IsSet() {
			return fmt.Errorf("back references stored for the unset element")
		}
		for lf, face := range row {
			if face < 0 {
				continue
			}
			if face >= len(t.faces) {
				return fmt.Errorf("element %v local face %d refers to missing face %d", id, lf, face)
			}
			if a := t.faces[face].Adjacent; a[0] != id && a[1] != id {
				return fmt.Errorf("element %v local face %d refers to face %d which is not adjacent to it", id, lf, face)
			}
			refCount[face]++
		}
	}
	for i := range t.faces {
		want := 1
		if !t.IsBoundary(i) {
			want = 2
		}
		if refCount[i] != want {
			return fmt.Errorf("face %d has %d back references, want %d", i, refCount[i], want)
		}
	}

	for name, set := range t.Sets {
		for k, face := range set {
			if face < 0 || face >= len(t.faces) {
				return fmt.Errorf("set %q refers to missing face %d", name, face)
			}
			if k > 0 && face <= set[k-1] {
				return fmt.Errorf("set %q is not strictly ascending at face %d", name, face)
			}
		}
	}
	return nil
}

func keyString(key []int) string {
	var b strings.Builder
	for i, n := range key {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	return b.String()
}
