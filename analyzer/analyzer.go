// Package analyzer checks, before a program is built, that every struct
// embedding unscrupulous.Plain only holds certified fields.
//
// Run it through go vet:
//
//	go install github.com/rawbytedev/unscrupulous/cmd/unscrupulousvet@latest
//	go vet -vettool=$(which unscrupulousvet) ./...
//
// A field is certified when its type is one of the built-in scalar kinds,
// an array of certified elements, a named type carrying the marker, an
// anonymous struct of certified fields, or a type parameter whose
// constraint only admits certified types.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// PkgPath is the import path of the package declaring the marker.
const PkgPath = "github.com/rawbytedev/unscrupulous"

const doc = `check that types embedding unscrupulous.Plain only contain certified fields

Embedding unscrupulous.Plain asserts that values of the struct can be
copied as raw bytes. The assertion is unsound when a field, transitively,
holds a pointer, slice, map, string, interface, channel, func, uintptr or a
platform-sized integer. This analyzer reports such fields.`

var Analyzer = &analysis.Analyzer{
	Name:     "unscrupulous",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.TypeSpec)(nil)}, func(n ast.Node) {
		spec := n.(*ast.TypeSpec)
		if spec.Assign.IsValid() {
			return
		}
		obj, ok := pass.TypesInfo.Defs[spec.Name].(*types.TypeName)
		if !ok {
			return
		}
		st, ok := obj.Type().Underlying().(*types.Struct)
		if !ok || !Asserts(obj.Type()) {
			return
		}
		for _, p := range structProblems(st, "") {
			pass.Reportf(p.Pos, "%s: %s", obj.Name(), p)
		}
		if pos, ok := TrailingPlain(obj.Type()); ok {
			pass.Reportf(pos, "%s: %s", obj.Name(), TrailingPlainMessage)
		}
	})
	return nil, nil
}

// TrailingPlainMessage describes a struct that embeds Plain after its
// other fields.
const TrailingPlainMessage = "unscrupulous.Plain as the last field adds trailing padding; embed it first"

// TrailingPlain reports whether t is a struct whose last field, after at
// least one other, is unscrupulous.Plain, and returns that field's position.
// A zero-sized final field is padded so its address stays inside the value.
func TrailingPlain(t types.Type) (token.Pos, bool) {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return token.NoPos, false
	}
	n := st.NumFields()
	if n < 2 || !isPlain(st.Field(n-1).Type()) {
		return token.NoPos, false
	}
	return st.Field(n - 1).Pos(), true
}

// Problem is a field that prevents certification.
type Problem struct {
	Field  string // dotted path from the checked struct
	Type   types.Type
	Reason string
	Pos    token.Pos
}

func (p Problem) String() string {
	return fmt.Sprintf("field %s: %s is not certified: %s", p.Field, p.Type, p.Reason)
}

// Asserts reports whether t is a struct that directly embeds
// unscrupulous.Plain.
func Asserts(t types.Type) bool {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < st.NumFields(); i++ {
		if f := st.Field(i); f.Embedded() && isPlain(f.Type()) {
			return true
		}
	}
	return false
}

// Problems lists the fields of t that are not certified. It returns nil
// when t is certified, and a single problem naming t itself when t is not
// a struct and not certified.
func Problems(t types.Type) []Problem {
	if st, ok := t.Underlying().(*types.Struct); ok {
		return structProblems(st, "")
	}
	if reason := Reason(t); reason != "" {
		return []Problem{{Type: t, Reason: reason}}
	}
	return nil
}

func structProblems(st *types.Struct, prefix string) []Problem {
	var out []Problem
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		path := f.Name()
		if prefix != "" {
			path = prefix + "." + path
		}
		ft := types.Unalias(f.Type())
		if inner, ok := ft.(*types.Struct); ok {
			out = append(out, structProblems(inner, path)...)
			continue
		}
		if reason := Reason(ft); reason != "" {
			out = append(out, Problem{Field: path, Type: ft, Reason: reason, Pos: f.Pos()})
		}
	}
	return out
}

// Reason explains why t is not certified, or returns "" when it is.
func Reason(t types.Type) string {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.TypeParam:
		if constrainedToCertified(t.Constraint()) {
			return ""
		}
		return "type parameter " + t.Obj().Name() + " admits uncertified types"
	case *types.Named:
		if isPlain(t) || isHostLayout(t) {
			return ""
		}
		if _, ok := t.Underlying().(*types.Struct); ok {
			if hasMarker(t) {
				return ""
			}
			return "named struct does not embed unscrupulous.Plain"
		}
		return Reason(t.Underlying())
	case *types.Basic:
		return basicReason(t)
	case *types.Array:
		return Reason(t.Elem())
	case *types.Struct:
		if ps := structProblems(t, ""); len(ps) > 0 {
			return ps[0].String()
		}
		return ""
	case *types.Pointer:
		return "pointer carries provenance"
	case *types.Slice:
		return "header points to a backing array"
	case *types.Map, *types.Chan, *types.Signature:
		return "reference type carries provenance"
	case *types.Interface:
		return "interface value holds a type word and a data pointer"
	default:
		return "unsupported type"
	}
}

func basicReason(b *types.Basic) string {
	switch b.Kind() {
	case types.Bool,
		types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint8, types.Uint16, types.Uint32, types.Uint64,
		types.Float32, types.Float64:
		return ""
	case types.Int, types.Uint:
		return "width depends on the platform"
	case types.Uintptr:
		return "uintptr encodes an address"
	case types.UnsafePointer:
		return "pointer carries provenance"
	case types.String:
		return "header points to a backing array"
	case types.Complex64, types.Complex128:
		return "not in the built-in table"
	default:
		return "unsupported basic type " + b.Name()
	}
}

// constrainedToCertified reports whether every type admitted by the
// constraint is certified. Embedded elements intersect, so one fully
// certified element is enough.
func constrainedToCertified(constraint types.Type) bool {
	iface, ok := constraint.Underlying().(*types.Interface)
	if !ok {
		return Reason(constraint) == ""
	}
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		if elementCertified(iface.EmbeddedType(i)) {
			return true
		}
	}
	return false
}

func elementCertified(e types.Type) bool {
	switch u := types.Unalias(e).(type) {
	case *types.Union:
		for i := 0; i < u.Len(); i++ {
			term := u.Term(i).Type()
			if _, isIface := term.Underlying().(*types.Interface); isIface {
				if !constrainedToCertified(term) {
					return false
				}
				continue
			}
			if Reason(term) != "" {
				return false
			}
		}
		return u.Len() > 0
	default:
		if _, isIface := u.Underlying().(*types.Interface); isIface {
			return constrainedToCertified(u)
		}
		return Reason(u) == ""
	}
}

func hasMarker(t types.Type) bool {
	mset := types.NewMethodSet(t)
	for i := 0; i < mset.Len(); i++ {
		fn := mset.At(i).Obj()
		if fn.Name() == "unscrupulous" && fn.Pkg() != nil && fn.Pkg().Path() == PkgPath {
			return true
		}
	}
	return false
}

func isPlain(t types.Type) bool {
	return isNamed(t, PkgPath, "Plain")
}

func isHostLayout(t types.Type) bool {
	return isNamed(t, "structs", "HostLayout")
}

func isNamed(t types.Type, pkg, name string) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Name() == name && obj.Pkg() != nil && obj.Pkg().Path() == pkg
}
