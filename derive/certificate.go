package derive

import (
	"reflect"
	"unsafe"
)

// Certificate is the capability granted to T by a successful derivation.
// Only Derive hands out a usable one.
type Certificate[T any] struct {
	size uintptr
	ok   bool
}

// Derive checks T with Default and returns its certificate.
func Derive[T any]() (Certificate[T], error) {
	return DeriveWith[T](Default)
}

// DeriveWith checks T with c and returns its certificate.
func DeriveWith[T any](c *Checker) (Certificate[T], error) {
	t := reflect.TypeFor[T]()
	if err := c.Check(t); err != nil {
		return Certificate[T]{}, err
	}
	return Certificate[T]{size: t.Size(), ok: true}, nil
}

// MustDerive is like Derive but panics if T cannot be certified.
func MustDerive[T any]() Certificate[T] {
	cert, err := Derive[T]()
	if err != nil {
		panic(err)
	}
	return cert
}

// Size is the length of every view produced by c.
func (c Certificate[T]) Size() int { return int(c.size) }

// Valid reports whether c came from a successful derivation.
func (c Certificate[T]) Valid() bool { return c.ok }

// Bytes views *x as a read-only slice of Size() bytes, with the same
// aliasing and layout caveats as unscrupulous.Bytes.
func (c Certificate[T]) Bytes(x *T) []byte {
	c.mustBeValid()
	return unsafe.Slice((*byte)(unsafe.Pointer(x)), c.size)
}

// SliceBytes views the elements of s as len(s)*Size() contiguous bytes.
func (c Certificate[T]) SliceBytes(s []T) []byte {
	c.mustBeValid()
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), uintptr(len(s))*c.size)
}

func (c Certificate[T]) mustBeValid() {
	if !c.ok {
		panic("derive: view through a zero Certificate[" + reflect.TypeFor[T]().String() + "]")
	}
}
