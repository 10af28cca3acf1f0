package common

import (
	"encoding/binary"
	"reflect"

	"golang.org/x/sys/cpu"
)

// IsBigEndian reports whether the running platform stores the most
// significant byte first.
var IsBigEndian = cpu.IsBigEndian

// IsScalarKind reports whether k is one of the built-in certified kinds.
func IsScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// KindReason explains why values of kind k are never certified. It returns
// "" for kinds that may be certified (scalars, arrays, structs).
func KindReason(k reflect.Kind) string {
	switch {
	case IsScalarKind(k), k == reflect.Array, k == reflect.Struct:
		return ""
	}
	switch k {
	case reflect.Pointer, reflect.UnsafePointer:
		return "pointer carries provenance"
	case reflect.Uintptr:
		return "uintptr encodes an address"
	case reflect.Slice, reflect.String:
		return "header points to a backing array"
	case reflect.Map, reflect.Chan, reflect.Func:
		return "reference type carries provenance"
	case reflect.Interface:
		return "interface value holds a type word and a data pointer"
	case reflect.Int, reflect.Uint:
		return "width depends on the platform"
	case reflect.Complex64, reflect.Complex128:
		return "not in the built-in table"
	default:
		return "unsupported kind " + k.String()
	}
}

// IsAligned reports whether addr is a multiple of align.
func IsAligned(addr uintptr, align int) bool {
	return align <= 1 || addr%uintptr(align) == 0
}

// WriteVarUintTo appends varint-encoded x to dst using a small stack scratch.
func WriteVarUintTo(dst []byte, x uint64) []byte {
	var scratch [binary.MaxVarintLen64]byte
	i := 0
	for x >= 0x80 {
		scratch[i] = byte(x) | 0x80
		x >>= 7
		i++
	}
	scratch[i] = byte(x)
	i++
	return append(dst, scratch[:i]...)
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
// It returns 0, 0 when b ends before the varint does.
func ReadVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		if i == binary.MaxVarintLen64 {
			return 0, 0
		}
		x |= uint64(c&0x7F) << s
		if c&0x80 == 0 {
			return x, i + 1
		}
		s += 7
	}
	return 0, 0
}
