package layout

import (
	"go/token"
	"go/types"
	"reflect"
	"runtime"
	"structs"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type packed struct {
	A uint32
	B uint32
}

type holey struct {
	A uint8
	B uint32
	C uint8
}

type pinned struct {
	_ structs.HostLayout
	A uint16
	B [2]uint8
}

type nested struct {
	Inner packed
	Rows  [2]holey
}

func TestPackedHasNoPadding(t *testing.T) {
	l := FromReflect(reflect.TypeFor[packed]())
	require.Equal(t, int64(8), l.Size)
	require.Equal(t, int64(4), l.Align)
	require.False(t, l.HasPadding())
	require.False(t, l.Pinned)
	require.Equal(t, []Field{
		{Path: "A", Type: "uint32", Offset: 0, Size: 4, Align: 4},
		{Path: "B", Type: "uint32", Offset: 4, Size: 4, Align: 4},
	}, l.Fields)
}

func TestInteriorAndTrailingPadding(t *testing.T) {
	l := FromReflect(reflect.TypeFor[holey]())
	require.Equal(t, int64(12), l.Size)
	require.Equal(t, []Span{{Offset: 1, Size: 3}, {Offset: 9, Size: 3}}, l.Padding)
	require.Equal(t, int64(6), l.PaddingBytes())
}

func TestArrayOfPaddedStructs(t *testing.T) {
	l := FromReflect(reflect.TypeFor[nested]())
	require.Equal(t, int64(8+24), l.Size)
	require.Equal(t, []Span{
		{Offset: 9, Size: 3}, {Offset: 17, Size: 3}, {Offset: 21, Size: 3}, {Offset: 29, Size: 3},
	}, l.Padding)
	require.Equal(t, "Inner.A", l.Fields[0].Path)
	require.Equal(t, "Rows", l.Fields[2].Path)
}

func TestPinned(t *testing.T) {
	l := FromReflect(reflect.TypeFor[pinned]())
	require.True(t, l.Pinned)
	require.False(t, l.HasPadding())
	require.Equal(t, int64(4), l.Size)
}

func TestScalarLayout(t *testing.T) {
	l := FromReflect(reflect.TypeFor[uint64]())
	require.Empty(t, l.Fields)
	require.Empty(t, l.Padding)
	require.Equal(t, int64(8), l.Size)
}

func TestTypesAgreesWithReflect(t *testing.T) {
	u8 := types.Typ[types.Uint8]
	u32 := types.Typ[types.Uint32]
	st := types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, nil, "A", u8, false),
		types.NewField(token.NoPos, nil, "B", u32, false),
		types.NewField(token.NoPos, nil, "C", u8, false),
	}, nil)
	sizes := types.SizesFor("gc", runtime.GOARCH)
	require.NotNil(t, sizes)

	got := FromTypes(st, sizes)
	want := FromReflect(reflect.TypeFor[holey]())
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Layout{}, "Type")); diff != "" {
		t.Fatalf("layout mismatch (-reflect +types):\n%s", diff)
	}
}

func TestTypesOtherArch(t *testing.T) {
	st := types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, nil, "A", types.Typ[types.Uint8], false),
		types.NewField(token.NoPos, nil, "B", types.Typ[types.Uint64], false),
	}, nil)
	l := FromTypes(st, types.SizesFor("gc", "386"))
	require.Equal(t, int64(12), l.Size)
	require.Equal(t, []Span{{Offset: 1, Size: 3}}, l.Padding)

	l = FromTypes(st, types.SizesFor("gc", "amd64"))
	require.Equal(t, int64(16), l.Size)
	require.Equal(t, []Span{{Offset: 1, Size: 7}}, l.Padding)
}

func TestYAMLReport(t *testing.T) {
	l := FromReflect(reflect.TypeFor[holey]())
	out, err := yaml.Marshal(l)
	require.NoError(t, err)
	var back Layout
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Equal(t, l, back)
	require.Contains(t, string(out), "padding:")
}

func TestString(t *testing.T) {
	s := FromReflect(reflect.TypeFor[pinned]()).String()
	require.Contains(t, s, "pinned")
	require.Contains(t, s, "size=4")
}
