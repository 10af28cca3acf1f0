package a

import (
	"structs"

	"github.com/rawbytedev/unscrupulous"
)

type Good struct {
	unscrupulous.Plain
	_     structs.HostLayout
	X, Y  int32
	Arr   [4]uint16
	Tag   struct{ A, B uint8 }
	Inner Nested
	N     unscrupulous.NonZero[uint32]
	W     unscrupulous.Uint128
}

type Nested struct {
	unscrupulous.Plain
	F float64
}

type Celsius int16

type WithTemp struct {
	unscrupulous.Plain
	T   Celsius
	Row [2][3]Celsius
}

type Alias = Nested

type WithAlias struct {
	unscrupulous.Plain
	A Alias
}

type BadPtr struct {
	unscrupulous.Plain
	X int32
	P *int32 // want `BadPtr: field P: \*int32 is not certified: pointer carries provenance`
}

type BadNested struct {
	unscrupulous.Plain
	Tag struct {
		A uint8
		S string // want `BadNested: field Tag.S: string is not certified`
	}
}

type Unmarked struct{ A uint8 }

type BadNamed struct {
	unscrupulous.Plain
	U Unmarked // want `BadNamed: field U: a.Unmarked is not certified: named struct does not embed unscrupulous.Plain`
}

type BadWidth struct {
	unscrupulous.Plain
	N int        // want `width depends on the platform`
	A [2]uintptr // want `uintptr encodes an address`
}

type BadRefs struct {
	unscrupulous.Plain
	S  []byte         // want `header points to a backing array`
	M  map[int8]int8  // want `reference type carries provenance`
	I  any            // want `interface value holds a type word and a data pointer`
	Fn func()         // want `reference type carries provenance`
}

type Box[T any] struct {
	unscrupulous.Plain
	V T // want `type parameter T admits uncertified types`
}

type Num interface{ ~int32 | ~float64 }

type NumBox[T Num] struct {
	unscrupulous.Plain
	V [2]T
}

type Trailing struct {
	X                  uint64
	unscrupulous.Plain // want `as the last field adds trailing padding`
}

type NotAsserted struct {
	P *int
}
