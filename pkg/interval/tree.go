package interval

import (
	"github.com/pkg/errors"
)

// ErrInvalidHandle is returned for handles that do not refer to a live node.
var ErrInvalidHandle = errors.New("invalid handle")

// Tree is an augmented red-black tree of closed intervals keyed on their low
// bound. Every node also tracks the highest high bound found in its subtree,
// which lets Query skip subtrees that end before the query window starts.
//
// Nodes live in an arena. Slot 0 is the nil sentinel standing in for every
// leaf and slot 1 is a virtual root whose left child is the real root, so
// no link is ever a null check.
//
// A Tree is not safe for concurrent mutation. Queries keep their traversal
// state on the stack, so concurrent read-only queries are fine as long as
// nothing modifies the tree meanwhile.
type Tree[T Scalar, V any] struct {
	nodes []node[T, V]
	free  []uint32
	count int

	lowest  T
	highest T
}

// New returns an empty tree whose sentinels use the full range of T.
func New[T Scalar, V any]() *Tree[T, V] {
	lowest, highest := Bounds[T]()
	return NewWithBounds[T, V](lowest, highest)
}

// NewWithBounds returns an empty tree whose nil sentinel holds lowest and
// whose virtual root holds highest.
func NewWithBounds[T Scalar, V any](lowest, highest T) *Tree[T, V] {
	t := &Tree[T, V]{
		nodes:   make([]node[T, V], 2, 16),
		lowest:  lowest,
		highest: highest,
	}
	t.resetSentinels()
	return t
}

func (t *Tree[T, V]) resetSentinels() {
	t.nodes[nilIdx] = node[T, V]{
		key:     t.lowest,
		high:    t.lowest,
		maxHigh: t.lowest,
		color:   black,
	}
	t.nodes[rootIdx] = node[T, V]{
		key:     t.highest,
		high:    t.highest,
		maxHigh: t.highest,
		color:   black,
	}
}

// Len returns the number of intervals held by the tree.
func (t *Tree[T, V]) Len() int {
	return t.count
}

// Empty reports whether the tree holds no intervals.
func (t *Tree[T, V]) Empty() bool {
	return t.nodes[rootIdx].left == nilIdx
}

// Height returns the number of levels in the tree.
func (t *Tree[T, V]) Height() int {
	type frame struct {
		idx   uint32
		depth int
	}

	var height int
	stack := []frame{{t.nodes[rootIdx].left, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.idx == nilIdx {
			continue
		}
		if f.depth > height {
			height = f.depth
		}
		n := &t.nodes[f.idx]
		stack = append(stack, frame{n.left, f.depth + 1}, frame{n.right, f.depth + 1})
	}
	return height
}

func (t *Tree[T, V]) alloc(iv *Interval[T, V]) uint32 {
	var i uint32
	if n := len(t.free); n > 0 {
		i = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node[T, V]{})
		i = uint32(len(t.nodes) - 1)
	}

	gen := t.nodes[i].gen + 1
	if gen == 0 {
		gen = 1
	}

	t.nodes[i] = node[T, V]{
		key:     iv.low,
		high:    iv.high,
		maxHigh: iv.high,
		color:   red,
		left:    nilIdx,
		right:   nilIdx,
		parent:  nilIdx,
		gen:     gen,
		iv:      iv,
	}
	return i
}

// release returns a slot to the free list and hands back its interval.
func (t *Tree[T, V]) release(i uint32) *Interval[T, V] {
	n := &t.nodes[i]
	iv := n.iv
	*n = node[T, V]{gen: n.gen}
	t.free = append(t.free, i)
	return iv
}

func (t *Tree[T, V]) lookup(h Handle) (uint32, error) {
	if h.idx <= rootIdx || int(h.idx) >= len(t.nodes) {
		return 0, errors.Wrapf(ErrInvalidHandle, "slot %d out of range", h.idx)
	}
	n := &t.nodes[h.idx]
	if n.iv == nil || n.gen != h.gen {
		return 0, errors.Wrapf(ErrInvalidHandle, "slot %d is stale", h.idx)
	}
	return h.idx, nil
}

func (t *Tree[T, V]) handle(i uint32) Handle {
	return Handle{idx: i, gen: t.nodes[i].gen}
}

// Get returns the interval a handle refers to.
func (t *Tree[T, V]) Get(h Handle) (*Interval[T, V], error) {
	i, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	return t.nodes[i].iv, nil
}

// updateMaxHigh recomputes the augmentation of a single real node from its
// own high bound and its children.
func (t *Tree[T, V]) updateMaxHigh(i uint32) {
	n := &t.nodes[i]
	m := n.high
	if n.left != nilIdx && t.nodes[n.left].maxHigh > m {
		m = t.nodes[n.left].maxHigh
	}
	if n.right != nilIdx && t.nodes[n.right].maxHigh > m {
		m = t.nodes[n.right].maxHigh
	}
	n.maxHigh = m
}

// fixupMaxHigh restores maxHigh on i and every ancestor below the virtual
// root.
func (t *Tree[T, V]) fixupMaxHigh(i uint32) {
	for i != rootIdx && i != nilIdx {
		t.updateMaxHigh(i)
		i = t.nodes[i].parent
	}
}

//	    x              y
//	   / \            / \
//	  a   y    =>    x   c
//	     / \        / \
//	    b   c      a   b
func (t *Tree[T, V]) rotateLeft(x uint32) {
	nodes := t.nodes
	y := nodes[x].right

	nodes[x].right = nodes[y].left
	if nodes[y].left != nilIdx {
		nodes[nodes[y].left].parent = x
	}

	p := nodes[x].parent
	nodes[y].parent = p
	if x == nodes[p].left {
		nodes[p].left = y
	} else {
		nodes[p].right = y
	}

	nodes[y].left = x
	nodes[x].parent = y

	t.updateMaxHigh(x)
	t.updateMaxHigh(y)
}

//	      x            y
//	     / \          / \
//	    y   c   =>   a   x
//	   / \              / \
//	  a   b            b   c
func (t *Tree[T, V]) rotateRight(x uint32) {
	nodes := t.nodes
	y := nodes[x].left

	nodes[x].left = nodes[y].right
	if nodes[y].right != nilIdx {
		nodes[nodes[y].right].parent = x
	}

	p := nodes[x].parent
	nodes[y].parent = p
	if x == nodes[p].left {
		nodes[p].left = y
	} else {
		nodes[p].right = y
	}

	nodes[y].right = x
	nodes[x].parent = y

	t.updateMaxHigh(x)
	t.updateMaxHigh(y)
}

// Insert adds iv to the tree, which takes ownership of it until it is
// deleted. Intervals with equal low bounds are all kept.
func (t *Tree[T, V]) Insert(iv *Interval[T, V]) Handle {
	z := t.alloc(iv)
	nodes := t.nodes

	y := rootIdx
	x := nodes[rootIdx].left
	for x != nilIdx {
		y = x
		if nodes[z].key < nodes[x].key {
			x = nodes[x].left
		} else {
			x = nodes[x].right
		}
	}

	nodes[z].parent = y
	if y == rootIdx || nodes[z].key < nodes[y].key {
		nodes[y].left = z
	} else {
		nodes[y].right = z
	}

	t.fixupMaxHigh(y)
	t.insertFixup(z)
	t.count++

	return t.handle(z)
}

func (t *Tree[T, V]) insertFixup(z uint32) {
	nodes := t.nodes

	for nodes[nodes[z].parent].color == red {
		p := nodes[z].parent
		g := nodes[p].parent

		if p == nodes[g].left {
			u := nodes[g].right
			if nodes[u].color == red {
				nodes[p].color = black
				nodes[u].color = black
				nodes[g].color = red
				z = g
				continue
			}
			if z == nodes[p].right {
				z = p
				t.rotateLeft(z)
				p = nodes[z].parent
			}
			nodes[p].color = black
			nodes[g].color = red
			t.rotateRight(g)
		} else {
			u := nodes[g].left
			if nodes[u].color == red {
				nodes[p].color = black
				nodes[u].color = black
				nodes[g].color = red
				z = g
				continue
			}
			if z == nodes[p].left {
				z = p
				t.rotateRight(z)
				p = nodes[z].parent
			}
			nodes[p].color = black
			nodes[g].color = red
			t.rotateLeft(g)
		}
	}

	nodes[nodes[rootIdx].left].color = black
}

func (t *Tree[T, V]) minimum(x uint32) uint32 {
	for t.nodes[x].left != nilIdx {
		x = t.nodes[x].left
	}
	return x
}

func (t *Tree[T, V]) maximum(x uint32) uint32 {
	for t.nodes[x].right != nilIdx {
		x = t.nodes[x].right
	}
	return x
}

// Min returns the handle of the interval with the lowest low bound.
func (t *Tree[T, V]) Min() (Handle, bool) {
	if t.Empty() {
		return Handle{}, false
	}
	return t.handle(t.minimum(t.nodes[rootIdx].left)), true
}

// Max returns the handle of the interval with the highest low bound.
func (t *Tree[T, V]) Max() (Handle, bool) {
	if t.Empty() {
		return Handle{}, false
	}
	return t.handle(t.maximum(t.nodes[rootIdx].left)), true
}

func (t *Tree[T, V]) successor(x uint32) uint32 {
	if t.nodes[x].right != nilIdx {
		return t.minimum(t.nodes[x].right)
	}
	y := t.nodes[x].parent
	for y != rootIdx && x == t.nodes[y].right {
		x = y
		y = t.nodes[y].parent
	}
	if y == rootIdx {
		return nilIdx
	}
	return y
}

func (t *Tree[T, V]) predecessor(x uint32) uint32 {
	if t.nodes[x].left != nilIdx {
		return t.maximum(t.nodes[x].left)
	}
	y := t.nodes[x].parent
	for y != rootIdx && x == t.nodes[y].left {
		x = y
		y = t.nodes[y].parent
	}
	if y == rootIdx {
		return nilIdx
	}
	return y
}

// Successor returns the in-order next interval's handle. The bool is false
// if h is the last one or is not valid.
func (t *Tree[T, V]) Successor(h Handle) (Handle, bool) {
	i, err := t.lookup(h)
	if err != nil {
		return Handle{}, false
	}
	if s := t.successor(i); s != nilIdx {
		return t.handle(s), true
	}
	return Handle{}, false
}

// Predecessor returns the in-order previous interval's handle. The bool is
// false if h is the first one or is not valid.
func (t *Tree[T, V]) Predecessor(h Handle) (Handle, bool) {
	i, err := t.lookup(h)
	if err != nil {
		return Handle{}, false
	}
	if p := t.predecessor(i); p != nilIdx {
		return t.handle(p), true
	}
	return Handle{}, false
}

// Ascend calls fn for every interval in order of low bound until fn returns
// false. fn must not modify the tree.
func (t *Tree[T, V]) Ascend(fn func(h Handle, iv *Interval[T, V]) bool) {
	if t.Empty() {
		return
	}
	for x := t.minimum(t.nodes[rootIdx].left); x != nilIdx; x = t.successor(x) {
		if !fn(t.handle(x), t.nodes[x].iv) {
			return
		}
	}
}

// Clear removes every interval from the tree. Outstanding handles become
// invalid.
func (t *Tree[T, V]) Clear() {
	stack := []uint32{t.nodes[rootIdx].left}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if x == nilIdx {
			continue
		}
		stack = append(stack, t.nodes[x].left, t.nodes[x].right)
		t.release(x)
	}

	t.count = 0
	t.resetSentinels()
}
