package interval

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Scalar is the set of bound types an interval can be keyed on. Only
// comparisons are ever performed on it.
type Scalar interface {
	constraints.Integer | constraints.Float
}

var (
	// ErrInvalidInterval is returned when an interval's high bound is before
	// its low bound (or either bound is NaN).
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrNotFound is returned when no stored interval overlaps a query.
	ErrNotFound = errors.New("no overlapping interval found")
)

// Interval is a closed range [low, high] carrying an opaque value.
// Intervals are compared by identity once inserted into a Tree.
type Interval[T Scalar, V any] struct {
	low   T
	high  T
	value V
}

// NewInterval returns a new Interval or an error if high is before low.
func NewInterval[T Scalar, V any](low, high T, value V) (*Interval[T, V], error) {
	if !(low <= high) {
		return nil, errors.Wrapf(ErrInvalidInterval, "range high before low [%v - %v]", low, high)
	}

	return &Interval[T, V]{
		low:   low,
		high:  high,
		value: value,
	}, nil
}

// Low returns the lower bound of the interval.
func (i *Interval[T, V]) Low() T {
	return i.low
}

// High returns the upper bound of the interval.
func (i *Interval[T, V]) High() T {
	return i.high
}

// Value returns the payload the interval was created with.
func (i *Interval[T, V]) Value() V {
	return i.value
}

// Overlaps reports whether [low, high] shares at least one point with i.
func (i *Interval[T, V]) Overlaps(low, high T) bool {
	return i.low <= high && low <= i.high
}

func (i *Interval[T, V]) String() string {
	return fmt.Sprintf("[%v - %v]", i.low, i.high)
}
