//go:build !(armbe || arm64be || m68k || mips || mips64 || mips64p32 || ppc || ppc64 || s390 || s390x || shbe || sparc || sparc64)

package unscrupulous

// Uint128 is an unsigned 128-bit integer laid out as the platform would lay
// out a native one: low half first on little-endian targets.
type Uint128 struct {
	Plain
	lo, hi uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Plain
	lo uint64
	hi int64
}
