package layout

import (
	"go/types"
)

// FromTypes describes t as sizes would lay it out. Use
// types.SizesFor("gc", goarch) to ask about another architecture.
func FromTypes(t types.Type, sizes types.Sizes) Layout {
	l := Layout{
		Type:   t.String(),
		Size:   sizes.Sizeof(t),
		Align:  sizes.Alignof(t),
		Pinned: IsPinnedType(t),
	}
	l.Fields = typesFields(t, sizes, "", 0, nil)
	l.Padding = gaps(l.Size, typesCovered(t, sizes, 0, nil))
	return l
}

// IsPinnedType reports whether t is a struct carrying a structs.HostLayout
// field.
func IsPinnedType(t types.Type) bool {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < st.NumFields(); i++ {
		if IsHostLayout(st.Field(i).Type()) {
			return true
		}
	}
	return false
}

// IsHostLayout reports whether t is structs.HostLayout.
func IsHostLayout(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "structs" && obj.Name() == "HostLayout"
}

func structOffsets(st *types.Struct, sizes types.Sizes) []int64 {
	vars := make([]*types.Var, st.NumFields())
	for i := range vars {
		vars[i] = st.Field(i)
	}
	return sizes.Offsetsof(vars)
}

func typesFields(t types.Type, sizes types.Sizes, prefix string, base int64, out []Field) []Field {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		if prefix == "" {
			return out
		}
		return append(out, Field{Path: prefix, Type: t.String(), Offset: base, Size: sizes.Sizeof(t), Align: sizes.Alignof(t)})
	}
	offsets := structOffsets(st, sizes)
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		out = typesFields(f.Type(), sizes, join(prefix, f.Name()), base+offsets[i], out)
	}
	return out
}

func typesCovered(t types.Type, sizes types.Sizes, base int64, out []Span) []Span {
	switch u := t.Underlying().(type) {
	case *types.Struct:
		offsets := structOffsets(u, sizes)
		for i := 0; i < u.NumFields(); i++ {
			out = typesCovered(u.Field(i).Type(), sizes, base+offsets[i], out)
		}
		return out
	case *types.Array:
		elemSize := sizes.Sizeof(u.Elem())
		inner := typesCovered(u.Elem(), sizes, 0, nil)
		if len(gaps(elemSize, inner)) == 0 {
			return append(out, Span{Offset: base, Size: sizes.Sizeof(t)})
		}
		for i := int64(0); i < u.Len(); i++ {
			off := base + i*elemSize
			for _, s := range inner {
				out = append(out, Span{Offset: off + s.Offset, Size: s.Size})
			}
		}
		return out
	default:
		return append(out, Span{Offset: base, Size: sizes.Sizeof(t)})
	}
}
