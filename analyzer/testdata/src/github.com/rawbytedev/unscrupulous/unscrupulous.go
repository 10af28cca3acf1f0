// Package unscrupulous is a trimmed copy of the marker API for analyzer tests.
package unscrupulous

import "unsafe"

type Unscrupulous interface {
	unscrupulous()
}

type Plain struct{}

func (Plain) unscrupulous() {}

type certified[T any] interface {
	*T
	Unscrupulous
}

type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

type Uint128 struct {
	Plain
	lo, hi uint64
}

type NonZeroable interface {
	Integer | Uint128
}

type NonZero[T NonZeroable] struct {
	Plain
	v T
}

func Bytes[T any, PT certified[T]](x *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(x)), unsafe.Sizeof(*x))
}

func ScalarBytes[T Scalar](x *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(x)), unsafe.Sizeof(*x))
}

func ScalarSliceBytes[E Scalar](s []E) []byte {
	var zero E
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), uintptr(len(s))*unsafe.Sizeof(zero))
}
