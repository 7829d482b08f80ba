package faces

// SetPolicy decides when a face belongs to a projected node set
type SetPolicy uint8

const (
	// AllNodes requires every node of the face to be in the set
	AllNodes SetPolicy = iota
	// AnyNode requires at least one node of the face to be in the set
	AnyNode
)

func (p SetPolicy) String() string {
	if p == AnyNode {
		return "any"
	}
	return "all"
}

// ProjectNodeSets maps named node sets onto faces. Each result lists face
// indices in ascending order.
func ProjectNodeSets(t *Table, sets map[string][]int, policy SetPolicy) map[string][]int {
	out := make(map[string][]int, len(sets))
	for name, nodes := range sets {
		out[name] = projectSet(t, nodes, policy)
	}
	return out
}

func projectSets(t *Table, src NodeSetSource, policy SetPolicy) map[string][]int {
	sets := make(map[string][]int)
	for _, name := range src.NodeSetNames() {
		nodes, _ := src.NodeSet(name)
		sets[name] = nodes
	}
	return ProjectNodeSets(t, sets, policy)
}

func projectSet(t *Table, nodes []int, policy SetPolicy) []int {
	member := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		member[n] = struct{}{}
	}
	faces := []int{}
	for i := range t.faces {
		in := 0
		for _, n := range t.faces[i].Nodes {
			if _, ok := member[n]; ok {
				in++
			}
		}
		switch {
		case policy == AnyNode && in > 0:
			faces = append(faces, i)
		case policy == AllNodes && in == len(t.faces[i].Nodes):
			faces = append(faces, i)
		}
	}
	return faces
}
