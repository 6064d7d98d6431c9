package interval

// Delete removes the interval h refers to and hands it back to the caller.
// Handles to every other interval stay valid.
func (t *Tree[T, V]) Delete(h Handle) (*Interval[T, V], error) {
	z, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	t.deleteNode(z)
	t.count--
	return t.release(z), nil
}

// DeleteInterval removes iv if the tree holds it, matching by identity
// rather than by bounds. It reports whether anything was removed.
func (t *Tree[T, V]) DeleteInterval(iv *Interval[T, V]) bool {
	h, ok := t.Find(iv)
	if !ok {
		return false
	}
	_, err := t.Delete(h)
	return err == nil
}

// Find returns the handle of the node holding iv. Keys are not unique, so
// every subtree that may contain iv's low bound is searched; with many
// duplicate low bounds this degrades to a full walk.
func (t *Tree[T, V]) Find(iv *Interval[T, V]) (Handle, bool) {
	if iv == nil {
		return Handle{}, false
	}

	nodes := t.nodes
	stack := []uint32{nodes[rootIdx].left}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for x != nilIdx {
			n := &nodes[x]
			if n.iv == iv {
				return t.handle(x), true
			}
			if n.maxHigh < iv.high {
				break
			}
			switch {
			case iv.low < n.key:
				x = n.left
			case iv.low > n.key:
				x = n.right
			default:
				stack = append(stack, n.right)
				x = n.left
			}
		}
	}

	return Handle{}, false
}

// transplant puts v where u hangs from its parent. v may be the nil
// sentinel, whose parent link is then used by deleteFixup.
func (t *Tree[T, V]) transplant(u, v uint32) {
	nodes := t.nodes
	p := nodes[u].parent
	if u == nodes[p].left {
		nodes[p].left = v
	} else {
		nodes[p].right = v
	}
	nodes[v].parent = p
}

// deleteNode unlinks z. When z has two children its successor y is moved
// into z's place, so only z's slot is ever vacated.
func (t *Tree[T, V]) deleteNode(z uint32) {
	nodes := t.nodes

	y := z
	removed := nodes[y].color
	var x, fix uint32

	switch {
	case nodes[z].left == nilIdx:
		x = nodes[z].right
		fix = nodes[z].parent
		t.transplant(z, x)
	case nodes[z].right == nilIdx:
		x = nodes[z].left
		fix = nodes[z].parent
		t.transplant(z, x)
	default:
		y = t.minimum(nodes[z].right)
		removed = nodes[y].color
		x = nodes[y].right
		if nodes[y].parent == z {
			nodes[x].parent = y
			fix = y
		} else {
			fix = nodes[y].parent
			t.transplant(y, x)
			nodes[y].right = nodes[z].right
			nodes[nodes[y].right].parent = y
		}
		t.transplant(z, y)
		nodes[y].left = nodes[z].left
		nodes[nodes[y].left].parent = y
		nodes[y].color = nodes[z].color
	}

	t.fixupMaxHigh(fix)

	if removed == black {
		t.deleteFixup(x)
	}
}

func (t *Tree[T, V]) deleteFixup(x uint32) {
	nodes := t.nodes

	for x != nodes[rootIdx].left && nodes[x].color == black {
		p := nodes[x].parent

		if x == nodes[p].left {
			w := nodes[p].right
			if nodes[w].color == red {
				nodes[w].color = black
				nodes[p].color = red
				t.rotateLeft(p)
				w = nodes[p].right
			}
			if nodes[nodes[w].left].color == black && nodes[nodes[w].right].color == black {
				nodes[w].color = red
				x = p
				continue
			}
			if nodes[nodes[w].right].color == black {
				nodes[nodes[w].left].color = black
				nodes[w].color = red
				t.rotateRight(w)
				w = nodes[p].right
			}
			nodes[w].color = nodes[p].color
			nodes[p].color = black
			nodes[nodes[w].right].color = black
			t.rotateLeft(p)
			x = nodes[rootIdx].left
		} else {
			w := nodes[p].left
			if nodes[w].color == red {
				nodes[w].color = black
				nodes[p].color = red
				t.rotateRight(p)
				w = nodes[p].left
			}
			if nodes[nodes[w].right].color == black && nodes[nodes[w].left].color == black {
				nodes[w].color = red
				x = p
				continue
			}
			if nodes[nodes[w].left].color == black {
				nodes[nodes[w].right].color = black
				nodes[w].color = red
				t.rotateLeft(w)
				w = nodes[p].left
			}
			nodes[w].color = nodes[p].color
			nodes[p].color = black
			nodes[nodes[w].left].color = black
			t.rotateRight(p)
			x = nodes[rootIdx].left
		}
	}

	nodes[x].color = black
}
