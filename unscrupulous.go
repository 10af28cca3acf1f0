// Package unscrupulous flags plain data types whose values can be
// duplicated by copying bits without worrying about provenance, and views
// such values as raw bytes.
//
// A type is certified in one of three ways:
//
//   - it belongs to the built-in table: the [Scalar] kinds, [Int128],
//     [Uint128] and [NonZero] integers;
//   - it is a fixed-size array of certified elements, viewed with
//     [SliceBytes] or [ScalarSliceBytes] over a[:];
//   - it embeds [Plain], which asserts that every nested field is
//     certified too.
//
// The last case is an unchecked promise. The compiler cannot verify it,
// and embedding Plain in a struct holding a pointer, slice, map, string,
// interface, channel, func or uintptr is a soundness bug that no test
// running the program normally will report. Run the analyzer in
// github.com/rawbytedev/unscrupulous/analyzer (cmd/unscrupulousvet) or
// github.com/rawbytedev/unscrupulous/derive to check the promise.
//
// The bytes returned by every view function reflect the in-memory layout
// chosen by the gc toolchain for the current GOARCH. Struct layout is not
// guaranteed by the language: before sending a view over the network or
// storing it on disk, pin the layout of T with a structs.HostLayout field,
// fixed-width fields and explicit padding. Nothing here guarantees that
// bytes produced by another build, process or machine are safe to turn
// back into a T.
package unscrupulous

import "unsafe"

// Unscrupulous is implemented by types whose values can be duplicated
// simply by copying bits. It carries no data and requires no behaviour; the
// method is unexported so that embedding [Plain] is the only way to
// implement it outside this package.
//
// Unscrupulous does not imply anything about copy semantics and certified
// values may be stored in interface values.
type Unscrupulous interface {
	unscrupulous()
}

// Plain is the zero-size marker that certifies the struct embedding it.
// Embed it as the first field; as the last field of a non-empty struct the
// gc toolchain pads the struct so that a pointer to the marker stays inside
// the allocation.
//
//	type Point struct {
//		unscrupulous.Plain
//		X, Y int32
//	}
//
// Safety: every field of the embedding struct, transitively, must be
// certified.
type Plain struct{}

func (Plain) unscrupulous() {}

// certified restricts a view to T itself. The method set of *T includes the
// marker whenever T has it, so constraining PT rather than T keeps pointer
// types out.
type certified[T any] interface {
	*T
	Unscrupulous
}

// Scalar is the closed table of predeclared certified kinds. Defined types
// over them (type Celsius int16) are certified as well. int, uint, uintptr,
// complex numbers and strings are excluded: their width depends on the
// platform, or their bits encode an address.
type Scalar interface {
	~bool |
		~int8 | ~uint8 |
		~int16 | ~uint16 |
		~int32 | ~uint32 |
		~int64 | ~uint64 |
		~float32 | ~float64
}

// Bytes transmutes the value at x into a slice of bytes of length
// unsafe.Sizeof(*x).
//
// The slice aliases *x: it performs no allocation and no copy, and it
// observes any later change to *x. It is read-only by contract; writing
// through it is undefined for types with restricted bit patterns such as
// NonZero. Bear in mind that the layout of composite types is not stable
// across toolchains and architectures, see the package documentation.
func Bytes[T any, PT certified[T]](x *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(x)), unsafe.Sizeof(*x))
}

// ScalarBytes is [Bytes] for the built-in [Scalar] kinds.
func ScalarBytes[T Scalar](x *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(x)), unsafe.Sizeof(*x))
}

// SliceBytes views the elements of s as one contiguous slice of
// len(s)*unsafe.Sizeof(s[0]) bytes, the concatenation of the element views
// in order. Fixed-size arrays are viewed through a[:].
func SliceBytes[E any, PE certified[E]](s []E) []byte {
	var zero E
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), uintptr(len(s))*unsafe.Sizeof(zero))
}

// ScalarSliceBytes is [SliceBytes] for the built-in [Scalar] kinds.
func ScalarSliceBytes[E Scalar](s []E) []byte {
	var zero E
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), uintptr(len(s))*unsafe.Sizeof(zero))
}

// AppendBytes appends a copy of the bytes of *x to dst.
func AppendBytes[T any, PT certified[T]](dst []byte, x *T) []byte {
	return append(dst, Bytes[T, PT](x)...)
}

// AppendScalar appends a copy of the bytes of *x to dst.
func AppendScalar[T Scalar](dst []byte, x *T) []byte {
	return append(dst, ScalarBytes(x)...)
}

// SizeOf returns the size in bytes of T, the length of every view of a T.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}
