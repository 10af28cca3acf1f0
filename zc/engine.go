package zc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"slices"
	"unsafe"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/rawbytedev/unscrupulous"
	"github.com/rawbytedev/unscrupulous/internal/common"
)

// certified mirrors the view constraint of the root package.
type certified[T any] interface {
	*T
	unscrupulous.Unscrupulous
}

// Number is the set of element kinds DecodeNumbers can rebuild: every bit
// pattern of them is a valid value.
type Number interface {
	unscrupulous.Integer | ~float32 | ~float64
}

var errIncompressible = errors.New("zc: incompressible payload")

// zstd encoders and decoders are safe for concurrent use. The decoder
// stops at cap(dst), so a body never inflates past the size in its header.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("zc: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true))
	if err != nil {
		panic("zc: zstd decoder initialization failed: " + err.Error())
	}
}

// Encoder builds frames. Its buffers are reused, so the slice returned by
// one call is only valid until the next call on the same Encoder. An
// Encoder is not safe for concurrent use.
type Encoder struct {
	Opts Options

	out     []byte
	scratch []byte
}

func NewEncoder(opts Options) *Encoder {
	return &Encoder{Opts: opts}
}

// EncodeValue frames the byte view of *x.
func EncodeValue[T any, PT certified[T]](e *Encoder, x *T) ([]byte, error) {
	return e.encode(unsafe.Sizeof(*x), 1, unscrupulous.Bytes[T, PT](x))
}

// EncodeSlice frames the byte views of the elements of s.
func EncodeSlice[E any, PE certified[E]](e *Encoder, s []E) ([]byte, error) {
	var zero E
	return e.encode(unsafe.Sizeof(zero), len(s), unscrupulous.SliceBytes[E, PE](s))
}

// EncodeScalars frames the byte views of s.
func EncodeScalars[E unscrupulous.Scalar](e *Encoder, s []E) ([]byte, error) {
	var zero E
	return e.encode(unsafe.Sizeof(zero), len(s), unscrupulous.ScalarSliceBytes(s))
}

func (e *Encoder) encode(elemSize uintptr, count int, raw []byte) ([]byte, error) {
	if uint64(elemSize) > math.MaxUint32 || uint64(count) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrUnsupported, count, elemSize)
	}
	comp := e.Opts.Compression
	body, err := e.compress(comp, raw)
	switch {
	case errors.Is(err, errIncompressible):
		comp, body = CompressionNone, raw
	case err != nil:
		return nil, err
	}

	h := newHeader(uint32(elemSize), uint32(count), comp, e.Opts.Checksum)
	size := HeaderSize + binary.MaxVarintLen64 + len(body) + e.Opts.Checksum.size()
	out := slices.Grow(e.out[:0], size)
	out = h.appendTo(out)
	out = common.WriteVarUintTo(out, uint64(len(body)))
	out = append(out, body...)
	out = appendChecksum(out, e.Opts.Checksum)
	e.out = out
	return out, nil
}

func (e *Encoder) compress(comp Compression, raw []byte) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return raw, nil
	case CompressionZstd:
		e.scratch = zstdEncoder.EncodeAll(raw, e.scratch[:0])
		if len(e.scratch) >= len(raw) {
			return nil, errIncompressible
		}
		return e.scratch, nil
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(raw))
		e.scratch = slices.Grow(e.scratch[:0], bound)[:bound]
		written, err := lz4.CompressBlock(raw, e.scratch, nil)
		if err != nil {
			return nil, fmt.Errorf("zc: lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(raw) {
			return nil, errIncompressible
		}
		return e.scratch[:written], nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupported, comp)
	}
}

func appendChecksum(buf []byte, sum Checksum) []byte {
	if sum == ChecksumBLAKE3 {
		digest := blake3.Sum256(buf)
		return append(buf, digest[:]...)
	}
	return binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
}

func verifyChecksum(covered, trailer []byte, sum Checksum) bool {
	if sum == ChecksumBLAKE3 {
		digest := blake3.Sum256(covered)
		return bytes.Equal(digest[:], trailer)
	}
	return binary.LittleEndian.Uint32(trailer) == crc32.ChecksumIEEE(covered)
}

// Frame is a decoded frame. Payload holds ElemSize*Count bytes laid out as
// the producing host had them in memory. For uncompressed frames it aliases
// the buffer given to Decode.
type Frame struct {
	Header
	Payload []byte
}

// Decoder parses frames. It is stateless apart from its options and is
// safe for concurrent use.
type Decoder struct {
	Opts Options
}

func NewDecoder(opts Options) *Decoder {
	return &Decoder{Opts: opts}
}

// Decode parses one frame occupying the whole of buf.
func (d *Decoder) Decode(buf []byte) (Frame, error) {
	h, err := decodeHeader(buf)
	if err != nil {
		return Frame{}, err
	}
	want := h.PayloadSize()
	if want > uint64(d.Opts.maxPayload()) {
		return Frame{}, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrUnsupported, want, d.Opts.maxPayload())
	}

	bodyLen, n := common.ReadVarUint(buf[HeaderSize:])
	if n == 0 {
		return Frame{}, fmt.Errorf("%w: truncated body length", ErrShortFrame)
	}
	start := HeaderSize + n
	sumSize := h.Checksum().size()
	if bodyLen > uint64(len(buf)-start) || len(buf)-start-int(bodyLen) < sumSize {
		return Frame{}, fmt.Errorf("%w: body of %d bytes, %d left", ErrShortFrame, bodyLen, len(buf)-start)
	}
	end := start + int(bodyLen)
	if end+sumSize != len(buf) {
		return Frame{}, fmt.Errorf("%w: %d trailing bytes", ErrUnsupported, len(buf)-end-sumSize)
	}
	if !verifyChecksum(buf[:end], buf[end:], h.Checksum()) {
		return Frame{}, fmt.Errorf("%w: %s", ErrChecksum, h.Checksum())
	}

	payload, err := decompress(h.Compression(), buf[start:end], int(want))
	if err != nil {
		return Frame{}, err
	}
	return Frame{Header: h, Payload: payload}, nil
}

func decompress(comp Compression, body []byte, size int) ([]byte, error) {
	switch comp {
	case CompressionNone:
		if len(body) != size {
			return nil, fmt.Errorf("%w: payload of %d bytes, header says %d", ErrSizeMismatch, len(body), size)
		}
		return body, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(body, make([]byte, 0, size))
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, fmt.Errorf("%w: zstd body inflates past %d bytes", ErrSizeMismatch, size)
		}
		if err != nil {
			return nil, fmt.Errorf("zc: zstd decompress: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, header says %d", ErrSizeMismatch, len(out), size)
		}
		return out, nil
	case CompressionLZ4:
		out := make([]byte, size)
		read, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("zc: lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, header says %d", ErrSizeMismatch, read, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupported, comp)
	}
}

// DecodeNumbers rebuilds the elements of f as a []E. The element size must
// match E and the frame must come from a host with the same byte order.
// With opts.ZeroCopy the result aliases f.Payload when it is aligned for E;
// otherwise the payload is copied.
func DecodeNumbers[E Number](f Frame, opts Options) ([]E, error) {
	var zero E
	size := unsafe.Sizeof(zero)
	if uintptr(f.ElemSize) != size {
		return nil, fmt.Errorf("%w: frame holds %d-byte elements, %T is %d bytes", ErrSizeMismatch, f.ElemSize, zero, size)
	}
	if f.BigEndian() != common.IsBigEndian {
		return nil, ErrByteOrder
	}
	if uint64(len(f.Payload)) != f.PayloadSize() {
		return nil, fmt.Errorf("%w: payload of %d bytes for %d elements", ErrSizeMismatch, len(f.Payload), f.Count)
	}
	if f.Count == 0 {
		return []E{}, nil
	}
	data := unsafe.Pointer(unsafe.SliceData(f.Payload))
	if opts.ZeroCopy && common.IsAligned(uintptr(data), int(unsafe.Alignof(zero))) {
		return unsafe.Slice((*E)(data), f.Count), nil
	}
	out := make([]E, f.Count)
	copy(unscrupulous.ScalarSliceBytes(out), f.Payload)
	return out, nil
}
