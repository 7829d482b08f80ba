package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeStore holds the node coordinate table of one partition. Nodes are
// indexed 0..N-1 and are never removed or moved; new nodes are appended.
type NodeStore struct {
	positions []r3.Vec
	sets      map[string][]int
}

// NewNodeStore creates a store holding a copy of the given positions
func NewNodeStore(positions []r3.Vec) *NodeStore {
	ns := &NodeStore{sets: make(map[string][]int)}
	ns.Add(positions...)
	return ns
}

// Add appends nodes and returns their indices
func (ns *NodeStore) Add(positions ...r3.Vec) []int {
	ids := make([]int, len(positions))
	for i, p := range positions {
		ids[i] = len(ns.positions)
		ns.positions = append(ns.positions, p)
	}
	return ids
}

// NumNodes returns the number of nodes in the store
func (ns *NodeStore) NumNodes() int { return len(ns.positions) }

// Position returns the coordinates of node i
func (ns *NodeStore) Position(i int) r3.Vec { return ns.positions[i] }

// Matrix returns the coordinates as an [N × 3] matrix, one node per row
func (ns *NodeStore) Matrix() *mat.Dense {
	if len(ns.positions) == 0 {
		return nil
	}
	data := make([]float64, 0, 3*len(ns.positions))
	for _, p := range ns.positions {
		data = append(data, p.X, p.Y, p.Z)
	}
	return mat.NewDense(len(ns.positions), 3, data)
}

// AddSet registers a named node set. The stored set is sorted and
// deduplicated; an existing set with the same name is replaced.
func (ns *NodeStore) AddSet(name string, nodes []int) error {
	if ns.sets == nil {
		ns.sets = make(map[string][]int)
	}
	set := append([]int(nil), nodes...)
	sort.Ints(set)
	out := set[:0]
	for _, n := range set {
		if n < 0 || n >= len(ns.positions) {
			return fmt.Errorf("node set %q: node %d out of range [0,%d)", name, n, len(ns.positions))
		}
		if len(out) > 0 && out[len(out)-1] == n {
			continue
		}
		out = append(out, n)
	}
	ns.sets[name] = out
	return nil
}

// Set returns the sorted members of a named node set
func (ns *NodeStore) Set(name string) ([]int, bool) {
	s, ok := ns.sets[name]
	return s, ok
}

// SetNames returns the registered set names in sorted order
func (ns *NodeStore) SetNames() []string {
	names := make([]string, 0, len(ns.sets))
	for name := range ns.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
