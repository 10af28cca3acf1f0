package zc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"testing"
	"testing/quick"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/unscrupulous"
	"github.com/rawbytedev/unscrupulous/internal/common"
)

type reading struct {
	unscrupulous.Plain
	Sensor uint32
	Temp   float32
	Seq    uint64
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i % 16)
	}
	return out
}

func TestRoundTripAllModes(t *testing.T) {
	values := ramp(1024)
	for _, comp := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		for _, sum := range []Checksum{ChecksumCRC32, ChecksumBLAKE3} {
			t.Run(fmt.Sprintf("%s/%s", comp, sum), func(t *testing.T) {
				enc := NewEncoder(Options{Compression: comp, Checksum: sum})
				buf, err := EncodeScalars(enc, values)
				require.NoError(t, err)

				f, err := NewDecoder(Options{}).Decode(buf)
				require.NoError(t, err)
				require.Equal(t, comp, f.Compression())
				require.Equal(t, sum, f.Checksum())
				require.EqualValues(t, 8, f.ElemSize)
				require.EqualValues(t, len(values), f.Count)
				require.Equal(t, unscrupulous.ScalarSliceBytes(values), f.Payload)

				got, err := DecodeNumbers[float64](f, Options{})
				require.NoError(t, err)
				require.Equal(t, values, got)
			})
		}
	}
}

func TestCompressionShrinksFrame(t *testing.T) {
	values := ramp(4096)
	raw, err := EncodeScalars(NewEncoder(Options{}), values)
	require.NoError(t, err)
	for _, comp := range []Compression{CompressionZstd, CompressionLZ4} {
		buf, err := EncodeScalars(NewEncoder(Options{Compression: comp}), values)
		require.NoError(t, err)
		assert.Less(t, len(buf), len(raw)/2, comp.String())
	}
}

func TestIncompressibleFallsBackToRaw(t *testing.T) {
	values := []uint8{0x9c, 0x11, 0xe0}
	for _, comp := range []Compression{CompressionZstd, CompressionLZ4} {
		buf, err := EncodeScalars(NewEncoder(Options{Compression: comp}), values)
		require.NoError(t, err)
		f, err := NewDecoder(Options{}).Decode(buf)
		require.NoError(t, err)
		require.Equal(t, CompressionNone, f.Compression())
		require.Equal(t, values, f.Payload)
	}
}

func TestEncodeValueCarriesByteView(t *testing.T) {
	r := reading{Sensor: 7, Temp: 21.5, Seq: 1 << 40}
	buf, err := EncodeValue(NewEncoder(Options{Checksum: ChecksumBLAKE3}), &r)
	require.NoError(t, err)

	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)
	require.EqualValues(t, 1, f.Count)
	require.EqualValues(t, unsafe.Sizeof(r), f.ElemSize)
	require.Equal(t, unscrupulous.Bytes(&r), f.Payload)
}

func TestEncodeSlice(t *testing.T) {
	rs := []reading{{Sensor: 1}, {Sensor: 2, Temp: -3}}
	buf, err := EncodeSlice(NewEncoder(Options{Compression: CompressionLZ4}), rs)
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, f.Count)
	require.Equal(t, unscrupulous.SliceBytes(rs), f.Payload)
}

func TestHeaderLayout(t *testing.T) {
	buf, err := EncodeScalars(NewEncoder(Options{Checksum: ChecksumBLAKE3}), []uint16{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte("UNSC"), buf[:4])
	require.EqualValues(t, Version, binary.LittleEndian.Uint16(buf[4:]))

	flags := uint16(FlagBLAKE3)
	if common.IsBigEndian {
		flags |= FlagBigEndian
	}
	require.Equal(t, flags, binary.LittleEndian.Uint16(buf[6:]))
	require.EqualValues(t, 2, binary.LittleEndian.Uint32(buf[8:]))
	require.EqualValues(t, 3, binary.LittleEndian.Uint32(buf[12:]))
	require.EqualValues(t, 6, buf[16]) // varint body length
	require.Len(t, buf, HeaderSize+1+6+32)
}

func TestEmptySlice(t *testing.T) {
	buf, err := EncodeScalars(NewEncoder(Options{Compression: CompressionZstd}), []int32{})
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)
	got, err := DecodeNumbers[int32](f, Options{ZeroCopy: true})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestZeroCopyAliasesPayload(t *testing.T) {
	bs := []uint8{1, 2, 3, 4, 5}
	buf, err := EncodeScalars(NewEncoder(Options{}), bs)
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)

	got, err := DecodeNumbers[uint8](f, Options{ZeroCopy: true})
	require.NoError(t, err)
	require.Same(t, &f.Payload[0], &got[0])

	copied, err := DecodeNumbers[uint8](f, Options{})
	require.NoError(t, err)
	require.NotSame(t, &f.Payload[0], &copied[0])
	require.Equal(t, bs, copied)
}

func TestZeroCopyDecompressedPayload(t *testing.T) {
	values := ramp(1024)
	buf, err := EncodeScalars(NewEncoder(Options{Compression: CompressionLZ4}), values)
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)

	got, err := DecodeNumbers[float64](f, Options{ZeroCopy: true})
	require.NoError(t, err)
	require.Equal(t, unsafe.Pointer(&f.Payload[0]), unsafe.Pointer(&got[0]))
	require.Equal(t, values, got)
}

func TestZeroCopyMisalignedCopies(t *testing.T) {
	src := []uint32{0xdeadbeef, 0x01020304, 0}
	raw := unscrupulous.ScalarSliceBytes(src)
	f := Frame{
		Header:  newHeader(4, 2, CompressionNone, ChecksumCRC32),
		Payload: make([]byte, 64)[1:9],
	}
	copy(f.Payload, raw[:8])

	got, err := DecodeNumbers[uint32](f, Options{ZeroCopy: true})
	require.NoError(t, err)
	require.NotEqual(t, unsafe.Pointer(&f.Payload[0]), unsafe.Pointer(&got[0]))
	require.Equal(t, src[:2], got)
}

func TestDecodeNumbersChecks(t *testing.T) {
	buf, err := EncodeScalars(NewEncoder(Options{}), []float64{1, 2})
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)

	_, err = DecodeNumbers[uint16](f, Options{})
	require.ErrorIs(t, err, ErrSizeMismatch)

	foreign := f
	foreign.Flags ^= FlagBigEndian
	_, err = DecodeNumbers[float64](foreign, Options{})
	require.ErrorIs(t, err, ErrByteOrder)

	short := f
	short.Payload = f.Payload[:8]
	_, err = DecodeNumbers[float64](short, Options{})
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	enc := NewEncoder(Options{})
	good, err := EncodeScalars(enc, []int16{1, -1, 300})
	require.NoError(t, err)
	good = bytes.Clone(good)
	dec := NewDecoder(Options{})

	mutate := func(f func(b []byte) []byte) []byte {
		return f(bytes.Clone(good))
	}
	for name, tc := range map[string]struct {
		buf  []byte
		want error
	}{
		"empty":     {buf: nil, want: ErrShortFrame},
		"header":    {buf: good[:HeaderSize-1], want: ErrShortFrame},
		"no body":   {buf: good[:HeaderSize], want: ErrShortFrame},
		"no sum":    {buf: good[:len(good)-2], want: ErrShortFrame},
		"magic":     {buf: mutate(func(b []byte) []byte { b[0] = 'X'; return b }), want: ErrBadMagic},
		"version":   {buf: mutate(func(b []byte) []byte { b[4] = 9; return b }), want: ErrVersion},
		"flags":     {buf: mutate(func(b []byte) []byte { b[7] = 0x80; return b }), want: ErrUnsupported},
		"comp":      {buf: mutate(func(b []byte) []byte { b[6] |= CompressionMask; return b }), want: ErrUnsupported},
		"payload":   {buf: mutate(func(b []byte) []byte { b[HeaderSize+1] ^= 0xff; return b }), want: ErrChecksum},
		"trailing":  {buf: mutate(func(b []byte) []byte { return append(b, 0) }), want: ErrUnsupported},
		"elem size": {buf: reseal(mutate(func(b []byte) []byte { b[8] = 4; return b })), want: ErrSizeMismatch},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode(tc.buf)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

// reseal recomputes the CRC-32 trailer of a raw frame.
func reseal(b []byte) []byte {
	return appendChecksum(b[:len(b)-4], ChecksumCRC32)
}

func TestMaxPayload(t *testing.T) {
	buf, err := EncodeScalars(NewEncoder(Options{}), make([]uint64, 64))
	require.NoError(t, err)
	_, err = NewDecoder(Options{MaxPayload: 256}).Decode(buf)
	require.ErrorIs(t, err, ErrUnsupported)
	_, err = NewDecoder(Options{MaxPayload: 512}).Decode(buf)
	require.NoError(t, err)
}

func TestZstdBodyBoundedByHeader(t *testing.T) {
	body := zstdEncoder.EncodeAll(make([]byte, 64<<20), nil)
	require.Less(t, len(body), 1<<20)

	h := newHeader(1, 16, CompressionZstd, ChecksumCRC32)
	buf := h.appendTo(nil)
	buf = common.WriteVarUintTo(buf, uint64(len(body)))
	buf = append(buf, body...)
	buf = appendChecksum(buf, ChecksumCRC32)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := NewDecoder(Options{MaxPayload: 1024}).Decode(buf)
	runtime.ReadMemStats(&after)
	require.ErrorIs(t, err, ErrSizeMismatch)
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(8<<20))
}

func TestEncoderReusesBuffer(t *testing.T) {
	enc := NewEncoder(Options{})
	first, err := EncodeScalars(enc, []uint32{1, 2, 3, 4})
	require.NoError(t, err)
	kept := bytes.Clone(first)
	_, err = EncodeScalars(enc, []uint32{5, 6, 7, 8})
	require.NoError(t, err)
	require.NotEqual(t, kept, first)

	f, err := NewDecoder(Options{}).Decode(kept)
	require.NoError(t, err)
	got, err := DecodeNumbers[uint32](f, Options{})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3, 4}, got)
}

func TestQuickRoundTrip(t *testing.T) {
	enc := NewEncoder(Options{Compression: CompressionZstd, Checksum: ChecksumBLAKE3})
	dec := NewDecoder(Options{})
	f := func(in []int64) bool {
		buf, err := EncodeScalars(enc, in)
		if err != nil {
			return false
		}
		fr, err := dec.Decode(buf)
		if err != nil {
			return false
		}
		out, err := DecodeNumbers[int64](fr, Options{ZeroCopy: true})
		if err != nil || len(out) != len(in) {
			return false
		}
		for i := range in {
			if in[i] != out[i] {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestFloatBitsSurvive(t *testing.T) {
	values := []float32{float32(math.NaN()), float32(math.Inf(-1)), -0.0, math.SmallestNonzeroFloat32}
	buf, err := EncodeScalars(NewEncoder(Options{}), values)
	require.NoError(t, err)
	f, err := NewDecoder(Options{}).Decode(buf)
	require.NoError(t, err)
	got, err := DecodeNumbers[float32](f, Options{})
	require.NoError(t, err)
	for i := range values {
		require.Equal(t, math.Float32bits(values[i]), math.Float32bits(got[i]))
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	require.Error(t, err)
	require.Equal(t, "unknown(3)", Compression(3).String())
}

func FuzzDecode(f *testing.F) {
	enc := NewEncoder(Options{Compression: CompressionLZ4})
	seed, _ := EncodeScalars(enc, ramp(64))
	f.Add(bytes.Clone(seed))
	f.Add([]byte("UNSC"))
	f.Fuzz(func(t *testing.T, data []byte) {
		fr, err := NewDecoder(Options{MaxPayload: 1 << 16}).Decode(data)
		if err != nil {
			return
		}
		require.EqualValues(t, fr.PayloadSize(), len(fr.Payload))
	})
}
