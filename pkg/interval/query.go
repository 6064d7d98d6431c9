package interval

// Visit calls fn for every stored interval overlapping the closed window
// [low, high], until fn returns false. Intervals are visited at most once,
// in no particular order. fn must not modify the tree.
func (t *Tree[T, V]) Visit(low, high T, fn func(iv *Interval[T, V]) bool) {
	nodes := t.nodes

	// Right subtrees still to search once the current left descent ends.
	var pending []uint32

	x := nodes[rootIdx].left
	for {
		for x != nilIdx {
			n := &nodes[x]
			if n.maxHigh < low {
				break
			}

			if n.key <= high && low <= n.high {
				if !fn(n.iv) {
					return
				}
			}

			// Everything right of n starts at or after n.key.
			right := nilIdx
			if n.key <= high {
				right = n.right
			}

			if n.left != nilIdx && nodes[n.left].maxHigh >= low {
				if right != nilIdx {
					pending = append(pending, right)
				}
				x = n.left
			} else {
				x = right
			}
		}

		if len(pending) == 0 {
			return
		}
		x = pending[len(pending)-1]
		pending = pending[:len(pending)-1]
	}
}

// Query returns every stored interval overlapping the closed window
// [low, high].
func (t *Tree[T, V]) Query(low, high T) []*Interval[T, V] {
	var res []*Interval[T, V]
	t.Visit(low, high, func(iv *Interval[T, V]) bool {
		res = append(res, iv)
		return true
	})
	return res
}

// FindFirstOverlapping returns any one stored interval overlapping
// [low, high], or ErrNotFound.
func (t *Tree[T, V]) FindFirstOverlapping(low, high T) (*Interval[T, V], error) {
	var found *Interval[T, V]
	t.Visit(low, high, func(iv *Interval[T, V]) bool {
		found = iv
		return false
	})
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// Intersects reports whether any stored interval overlaps [low, high].
func (t *Tree[T, V]) Intersects(low, high T) bool {
	_, err := t.FindFirstOverlapping(low, high)
	return err == nil
}
