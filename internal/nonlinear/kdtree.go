package nonlinear

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// kdNode is one node of the tree: a stored vector, its splitting axis
// implied by depth, and a tombstone for lazy deletion.
type kdNode struct {
	id      valuetype.EntryID
	vec     valuetype.Vector
	left    *kdNode
	right   *kdNode
	deleted bool
}

// KDTree is an exact nearest-neighbor index over a fixed dimension,
// native to Euclidean distance. It has no incremental rebalancing:
// deletions are lazy tombstones, and the tree is rebuilt from scratch
// once tombstones reach a quarter of live nodes, keeping query depth
// from degrading indefinitely under heavy churn.
type KDTree struct {
	mu sync.RWMutex

	dimension int
	root      *kdNode
	live      int
	deadCount int
}

// NewKDTree creates an empty tree over vectors of the given dimension.
func NewKDTree(dimension int) *KDTree {
	return &KDTree{dimension: dimension}
}

// Algorithm reports Euclidean: the only ordering a KD-Tree's axis-aligned
// splits are valid for.
func (t *KDTree) Algorithm() similarity.Algorithm {
	return similarity.Euclidean
}

// Insert adds or replaces the vector for id.
func (t *KDTree) Insert(id valuetype.EntryID, vec valuetype.Vector) error {
	if len(vec) != t.dimension {
		return fmt.Errorf("kdtree: vector has dimension %d, want %d", len(vec), t.dimension)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(id)
	t.root = insertNode(t.root, &kdNode{id: id, vec: vec}, 0, t.dimension)
	t.live++
	return nil
}

// Remove deletes id from the index, if present. Removal is a tombstone;
// the node's space is reclaimed on the next rebuild.
func (t *KDTree) Remove(id valuetype.EntryID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(id)
}

func (t *KDTree) removeLocked(id valuetype.EntryID) {
	n := findNode(t.root, id)
	if n == nil || n.deleted {
		return
	}
	n.deleted = true
	t.live--
	t.deadCount++
	if t.live > 0 && t.deadCount*4 >= t.live {
		t.rebuildLocked()
	}
}

// Len reports the number of live entries.
func (t *KDTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Nearest returns up to n neighbors of query ordered by ascending
// Euclidean distance (best first).
func (t *KDTree) Nearest(query valuetype.Vector, n int) ([]Neighbor, error) {
	if len(query) != t.dimension {
		return nil, fmt.Errorf("kdtree: query has dimension %d, want %d", len(query), t.dimension)
	}
	if n <= 0 {
		return nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	h := &neighborHeap{}
	heap.Init(h)
	searchNode(t.root, query, 0, t.dimension, n, h)

	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item := heap.Pop(h).(heapItem)
		out[i] = Neighbor{ID: item.id, Score: item.dist}
	}
	return out, nil
}

func insertNode(root, n *kdNode, depth, dimension int) *kdNode {
	if root == nil {
		return n
	}
	axis := depth % dimension
	if n.vec[axis] < root.vec[axis] {
		root.left = insertNode(root.left, n, depth+1, dimension)
	} else {
		root.right = insertNode(root.right, n, depth+1, dimension)
	}
	return root
}

func findNode(root *kdNode, id valuetype.EntryID) *kdNode {
	if root == nil {
		return nil
	}
	if root.id == id && !root.deleted {
		return root
	}
	if n := findNode(root.left, id); n != nil {
		return n
	}
	return findNode(root.right, id)
}

// rebuildLocked collects all live nodes and rebuilds a balanced tree from
// them, discarding tombstones. Caller must hold the write lock.
func (t *KDTree) rebuildLocked() {
	var live []*kdNode
	collectLive(t.root, &live)
	t.root = buildBalanced(live, 0, t.dimension)
	t.deadCount = 0
}

func collectLive(n *kdNode, out *[]*kdNode) {
	if n == nil {
		return
	}
	if !n.deleted {
		*out = append(*out, &kdNode{id: n.id, vec: n.vec})
	}
	collectLive(n.left, out)
	collectLive(n.right, out)
}

func buildBalanced(nodes []*kdNode, depth, dimension int) *kdNode {
	if len(nodes) == 0 {
		return nil
	}
	axis := depth % dimension
	medianSelect(nodes, axis)
	mid := len(nodes) / 2
	root := nodes[mid]
	root.left = buildBalanced(nodes[:mid], depth+1, dimension)
	root.right = buildBalanced(nodes[mid+1:], depth+1, dimension)
	return root
}

// medianSelect sorts nodes in place along axis so the element at the
// midpoint is the true median along axis (insertion sort is sufficient;
// rebuilds are infrequent and batched).
func medianSelect(nodes []*kdNode, axis int) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j].vec[axis] < nodes[j-1].vec[axis]; j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}

func searchNode(n *kdNode, query valuetype.Vector, depth, dimension, n_ int, h *neighborHeap) {
	if n == nil {
		return
	}
	if !n.deleted {
		d := similarity.EuclideanDistance(query, n.vec)
		if h.Len() < n_ {
			heap.Push(h, heapItem{id: n.id, dist: d})
		} else if d < (*h)[0].dist {
			heap.Pop(h)
			heap.Push(h, heapItem{id: n.id, dist: d})
		}
	}

	axis := depth % dimension
	diff := query[axis] - n.vec[axis]

	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	searchNode(near, query, depth+1, dimension, n_, h)

	// Only descend into the far side if it could still hold a closer
	// point than the current worst kept neighbor.
	if h.Len() < n_ || valuetype.Similarity(diff*diff) < (*h)[0].dist*(*h)[0].dist {
		searchNode(far, query, depth+1, dimension, n_, h)
	}
}

// heapItem is a max-heap entry keyed on distance, so the root is always
// the current worst of the n-best kept so far.
type heapItem struct {
	id   valuetype.EntryID
	dist valuetype.Similarity
}

type neighborHeap []heapItem

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
