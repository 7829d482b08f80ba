package faces

import "slices"

// bucketEntry is a face waiting in a lowest-node bucket with its sorted key
type bucketEntry struct {
	face int
	key  []int
}

// lowestNodeBucket indexes faces by the lowest node id of their node set.
// Faces with a free adjacency slot sit in pending; once the second slot
// fills they move to closed, where a further match means a non-manifold
// mesh. The structure belongs to a single Build or Extend call.
type lowestNodeBucket struct {
	pending [][]bucketEntry
	closed  [][]bucketEntry
}

func newLowestNodeBucket(numNodes int) *lowestNodeBucket {
	return &lowestNodeBucket{
		pending: make([][]bucketEntry, numNodes),
		closed:  make([][]bucketEntry, numNodes),
	}
}

func (b *lowestNodeBucket) add(key []int, face int) {
	low := key[0]
	b.pending[low] = append(b.pending[low], bucketEntry{face: face, key: key})
}

func (b *lowestNodeBucket) addClosed(key []int, face int) {
	low := key[0]
	b.closed[low] = append(b.closed[low], bucketEntry{face: face, key: key})
}

// takePending returns the pending face matching key and moves it to closed
func (b *lowestNodeBucket) takePending(key []int) (int, bool) {
	low := key[0]
	entries := b.pending[low]
	for i, e := range entries {
		if !slices.Equal(e.key, key) {
			continue
		}
		b.pending[low] = append(entries[:i], entries[i+1:]...)
		b.closed[low] = append(b.closed[low], e)
		return e.face, true
	}
	return -1, false
}

// findClosed returns a closed face matching key
func (b *lowestNodeBucket) findClosed(key []int) (int, bool) {
	for _, e := range b.closed[key[0]] {
		if slices.Equal(e.key, key) {
			return e.face, true
		}
	}
	return -1, false
}
