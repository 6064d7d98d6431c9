package interval

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Check verifies the tree's structural invariants: sentinel state, parent
// links, key order, the red-black rules and every node's maxHigh. It is
// meant for tests and debugging and runs in O(n).
func (t *Tree[T, V]) Check() error {
	nodes := t.nodes

	if nodes[nilIdx].color != black || nodes[rootIdx].color != black {
		return errors.New("sentinel is not black")
	}
	if nodes[nilIdx].left != nilIdx || nodes[nilIdx].right != nilIdx {
		return errors.New("nil sentinel has children")
	}
	if nodes[rootIdx].right != nilIdx {
		return errors.New("virtual root has a right child")
	}

	root := nodes[rootIdx].left
	if root == nilIdx {
		if t.count != 0 {
			return errors.Errorf("empty tree reports %d intervals", t.count)
		}
		return nil
	}
	if nodes[root].parent != rootIdx {
		return errors.Errorf("root %d is not linked to the virtual root", root)
	}
	if nodes[root].color != black {
		return errors.New("root is red")
	}

	n, _, err := t.checkSubtree(root)
	if err != nil {
		return err
	}
	if n != t.count {
		return errors.Errorf("tree holds %d nodes but reports %d", n, t.count)
	}

	var prev uint32 = nilIdx
	for x := t.minimum(root); x != nilIdx; x = t.successor(x) {
		if prev != nilIdx && nodes[x].key < nodes[prev].key {
			return errors.Errorf("keys out of order: %v after %v", nodes[x].key, nodes[prev].key)
		}
		prev = x
	}

	return nil
}

// checkSubtree returns the node count and black height of the subtree at x.
func (t *Tree[T, V]) checkSubtree(x uint32) (count, blackHeight int, err error) {
	if x == nilIdx {
		return 0, 1, nil
	}

	n := &t.nodes[x]
	if n.iv == nil {
		return 0, 0, errors.Errorf("node %d has no interval", x)
	}
	if n.key != n.iv.low || n.high != n.iv.high {
		return 0, 0, errors.Errorf("node %d bounds differ from %s", x, n.iv)
	}

	for _, c := range []uint32{n.left, n.right} {
		if c == nilIdx {
			continue
		}
		if t.nodes[c].parent != x {
			return 0, 0, errors.Errorf("node %d has wrong parent link", c)
		}
		if n.color == red && t.nodes[c].color == red {
			return 0, 0, errors.Errorf("red node %d has red child %d", x, c)
		}
	}
	if n.left != nilIdx && t.nodes[n.left].key > n.key {
		return 0, 0, errors.Errorf("left child of node %d has greater key", x)
	}
	if n.right != nilIdx && t.nodes[n.right].key < n.key {
		return 0, 0, errors.Errorf("right child of node %d has smaller key", x)
	}

	lc, lbh, err := t.checkSubtree(n.left)
	if err != nil {
		return 0, 0, err
	}
	rc, rbh, err := t.checkSubtree(n.right)
	if err != nil {
		return 0, 0, err
	}
	if lbh != rbh {
		return 0, 0, errors.Errorf("node %d has black heights %d and %d", x, lbh, rbh)
	}

	want := n.high
	if n.left != nilIdx && t.nodes[n.left].maxHigh > want {
		want = t.nodes[n.left].maxHigh
	}
	if n.right != nilIdx && t.nodes[n.right].maxHigh > want {
		want = t.nodes[n.right].maxHigh
	}
	if n.maxHigh != want {
		return 0, 0, errors.Errorf("node %d has maxHigh %v, want %v", x, n.maxHigh, want)
	}

	if n.color == black {
		lbh++
	}
	return lc + rc + 1, lbh, nil
}

// Dump writes the tree sideways, right subtree on top, one node per line.
func (t *Tree[T, V]) Dump(w io.Writer) {
	if t.Empty() {
		fmt.Fprintln(w, "(empty)")
		return
	}
	t.dump(w, t.nodes[rootIdx].left, 0)
}

func (t *Tree[T, V]) dump(w io.Writer, x uint32, depth int) {
	if x == nilIdx {
		return
	}
	n := &t.nodes[x]
	t.dump(w, n.right, depth+1)
	fmt.Fprintf(w, "%s%s max=%v %s\n", strings.Repeat("    ", depth), n.iv, n.maxHigh, n.color)
	t.dump(w, n.left, depth+1)
}

func (t *Tree[T, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	t.Ascend(func(_ Handle, iv *Interval[T, V]) bool {
		if sb.Len() > 1 {
			sb.WriteByte(' ')
		}
		sb.WriteString(iv.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
