package interval

import (
	"math"
	"reflect"
)

type color uint8

const (
	black color = iota
	red
)

func (c color) String() string {
	if c == red {
		return "red"
	}
	return "black"
}

// Fixed arena slots of the two sentinels.
const (
	nilIdx  uint32 = 0
	rootIdx uint32 = 1
)

// node is an arena entry. Links are arena indices; parent is a back
// reference only.
type node[T Scalar, V any] struct {
	key     T
	high    T
	maxHigh T
	color   color
	left    uint32
	right   uint32
	parent  uint32
	gen     uint32
	iv      *Interval[T, V]
}

// Handle refers to the node holding one inserted interval. It stays valid
// until that interval is deleted or the tree is cleared. The zero Handle is
// never valid.
type Handle struct {
	idx uint32
	gen uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// Bounds returns the lowest and highest values representable by T. Float
// types get -Inf and +Inf.
func Bounds[T Scalar]() (lowest, highest T) {
	lo := reflect.ValueOf(&lowest).Elem()
	hi := reflect.ValueOf(&highest).Elem()
	bits := lo.Type().Bits()

	switch lo.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		lo.SetInt(math.MinInt64 >> (64 - bits))
		hi.SetInt(math.MaxInt64 >> (64 - bits))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		lo.SetUint(0)
		hi.SetUint(math.MaxUint64 >> (64 - bits))
	case reflect.Float32, reflect.Float64:
		lo.SetFloat(math.Inf(-1))
		hi.SetFloat(math.Inf(1))
	}

	return lowest, highest
}
