package unscrupulous

import "math/big"

// U128 builds a Uint128 from its halves.
func U128(hi, lo uint64) Uint128 {
	return Uint128{hi: hi, lo: lo}
}

// I128 builds an Int128 from its halves. hi carries the sign.
func I128(hi int64, lo uint64) Int128 {
	return Int128{hi: hi, lo: lo}
}

// Uint128From widens v.
func Uint128From(v uint64) Uint128 { return Uint128{lo: v} }

// Int128From sign-extends v.
func Int128From(v int64) Int128 {
	return Int128{hi: v >> 63, lo: uint64(v)}
}

func (u Uint128) Hi() uint64   { return u.hi }
func (u Uint128) Lo() uint64   { return u.lo }
func (u Uint128) IsZero() bool { return u.hi == 0 && u.lo == 0 }

// Cmp returns -1, 0 or +1.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.hi < v.hi, u.hi == v.hi && u.lo < v.lo:
		return -1
	case u == v:
		return 0
	default:
		return 1
	}
}

// Big returns u as a new big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.lo))
}

func (u Uint128) String() string { return u.Big().String() }

func (i Int128) Hi() int64    { return i.hi }
func (i Int128) Lo() uint64   { return i.lo }
func (i Int128) IsZero() bool { return i.hi == 0 && i.lo == 0 }

// Sign returns -1, 0 or +1.
func (i Int128) Sign() int {
	switch {
	case i.hi < 0:
		return -1
	case i.IsZero():
		return 0
	default:
		return 1
	}
}

// Big returns i as a new big.Int.
func (i Int128) Big() *big.Int {
	b := big.NewInt(i.hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(i.lo))
}

func (i Int128) String() string { return i.Big().String() }
