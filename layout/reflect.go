package layout

import (
	"reflect"
	"structs"
)

var hostLayoutType = reflect.TypeFor[structs.HostLayout]()

// FromReflect describes t as laid out by the running binary.
func FromReflect(t reflect.Type) Layout {
	l := Layout{
		Type:   t.String(),
		Size:   int64(t.Size()),
		Align:  int64(t.Align()),
		Pinned: IsPinned(t),
	}
	l.Fields = reflectFields(t, "", 0, nil)
	l.Padding = gaps(l.Size, reflectCovered(t, 0, nil))
	return l
}

// IsPinned reports whether t is a struct carrying a structs.HostLayout
// field.
func IsPinned(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Type == hostLayoutType {
			return true
		}
	}
	return false
}

func reflectFields(t reflect.Type, prefix string, base int64, out []Field) []Field {
	if t.Kind() != reflect.Struct {
		if prefix == "" {
			return out
		}
		return append(out, Field{Path: prefix, Type: t.String(), Offset: base, Size: int64(t.Size()), Align: int64(t.Align())})
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		out = reflectFields(sf.Type, join(prefix, sf.Name), base+int64(sf.Offset), out)
	}
	return out
}

// reflectCovered appends the byte ranges of t that hold data.
func reflectCovered(t reflect.Type, base int64, out []Span) []Span {
	switch t.Kind() {
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			out = reflectCovered(sf.Type, base+int64(sf.Offset), out)
		}
		return out
	case reflect.Array:
		elem := t.Elem()
		inner := reflectCovered(elem, 0, nil)
		if len(gaps(int64(elem.Size()), inner)) == 0 {
			return append(out, Span{Offset: base, Size: int64(t.Size())})
		}
		for i := 0; i < t.Len(); i++ {
			off := base + int64(i)*int64(elem.Size())
			for _, s := range inner {
				out = append(out, Span{Offset: off + s.Offset, Size: s.Size})
			}
		}
		return out
	default:
		return append(out, Span{Offset: base, Size: int64(t.Size())})
	}
}
