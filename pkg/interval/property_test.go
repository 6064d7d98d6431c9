package interval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// bruteOverlaps is the reference answer for a query over a plain slice.
func bruteOverlaps(live map[*Interval[int64, int]]bool, low, high int64) map[*Interval[int64, int]]bool {
	out := make(map[*Interval[int64, int]]bool)
	for iv := range live {
		if iv.Low() <= high && low <= iv.High() {
			out[iv] = true
		}
	}
	return out
}

func requireQueryMatches(r *require.Assertions, tree *Tree[int64, int], live map[*Interval[int64, int]]bool, low, high int64) {
	got := tree.Query(low, high)
	seen := make(map[*Interval[int64, int]]bool, len(got))
	for _, iv := range got {
		r.False(seen[iv], "duplicate %s in query [%d - %d]", iv, low, high)
		seen[iv] = true
		r.True(live[iv], "deleted interval %s returned by query", iv)
	}
	r.Equal(bruteOverlaps(live, low, high), seen, "query [%d - %d]", low, high)
}

func TestRandomRoundTrip(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42, 1337} {
		for _, n := range []int{1, 2, 17, 200, 1000} {
			rng := rand.New(rand.NewSource(seed))
			r := require.New(t)

			tree := New[int64, int]()
			live := make(map[*Interval[int64, int]]bool)
			handles := make(map[*Interval[int64, int]]Handle)

			for i := 0; i < n; i++ {
				low := rng.Int63n(1000)
				iv, err := NewInterval(low, low+rng.Int63n(100), i)
				r.NoError(err)
				handles[iv] = tree.Insert(iv)
				live[iv] = true
			}
			r.NoError(tree.Check())
			r.Equal(n, tree.Len())

			// Delete a random subset, alternating between handle and identity.
			i := 0
			for iv := range live {
				if rng.Intn(2) == 0 {
					continue
				}
				if i%2 == 0 {
					got, err := tree.Delete(handles[iv])
					r.NoError(err)
					r.Same(iv, got)
				} else {
					r.True(tree.DeleteInterval(iv))
				}
				delete(live, iv)
				i++
				if i%16 == 0 {
					r.NoError(tree.Check())
				}
			}
			r.NoError(tree.Check())
			r.Equal(len(live), tree.Len())

			for q := 0; q < 100; q++ {
				low := rng.Int63n(1200) - 100
				requireQueryMatches(r, tree, live, low, low+rng.Int63n(150))
			}

			for iv, h := range handles {
				got, err := tree.Get(h)
				if live[iv] {
					r.NoError(err)
					r.Same(iv, got)
				} else {
					r.Error(err)
				}
			}
		}
	}
}

func TestInterleavedMutations(t *testing.T) {
	r := require.New(t)
	rng := rand.New(rand.NewSource(7))

	tree := New[int64, int]()
	live := make(map[*Interval[int64, int]]bool)
	var order []*Interval[int64, int]

	for step := 0; step < 3000; step++ {
		if len(order) == 0 || rng.Intn(3) != 0 {
			low := rng.Int63n(500)
			iv, err := NewInterval(low, low+rng.Int63n(40), step)
			r.NoError(err)
			tree.Insert(iv)
			live[iv] = true
			order = append(order, iv)
		} else {
			k := rng.Intn(len(order))
			iv := order[k]
			order[k] = order[len(order)-1]
			order = order[:len(order)-1]
			r.True(tree.DeleteInterval(iv))
			delete(live, iv)
		}

		if step%100 == 0 {
			r.NoError(tree.Check())
			low := rng.Int63n(540)
			requireQueryMatches(r, tree, live, low, low+rng.Int63n(60))
		}
	}

	r.NoError(tree.Check())
	r.LessOrEqual(tree.Height(), 2*bitLen(tree.Len()+1))
}

func bitLen(n int) int {
	var b int
	for n > 0 {
		b++
		n >>= 1
	}
	return b
}
