package unscrupulous

import "fmt"

// Integer is the set of fixed-width integer kinds.
type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// NonZeroable is the set of integers a NonZero can wrap.
type NonZeroable interface {
	Integer | Int128 | Uint128
}

// NonZero is an integer known not to be zero. It has the size, alignment
// and bit pattern of T, and its byte view is the byte view of the wrapped
// value.
//
// NonZero is certified even though the zero pattern is not a valid value:
// certification is about provenance, not about every bit pattern being
// valid. Rebuilding a NonZero from arbitrary bytes is not safe.
type NonZero[T NonZeroable] struct {
	Plain
	v T
}

// NewNonZero wraps v, reporting false when v is zero.
func NewNonZero[T NonZeroable](v T) (NonZero[T], bool) {
	var zero T
	if v == zero {
		return NonZero[T]{}, false
	}
	return NonZero[T]{v: v}, true
}

// MustNonZero is like NewNonZero but panics on zero.
func MustNonZero[T NonZeroable](v T) NonZero[T] {
	n, ok := NewNonZero(v)
	if !ok {
		panic(fmt.Sprintf("unscrupulous: zero %T passed to MustNonZero", v))
	}
	return n
}

// Get returns the wrapped value.
func (n NonZero[T]) Get() T { return n.v }

func (n NonZero[T]) String() string { return fmt.Sprint(n.v) }
