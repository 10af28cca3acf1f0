package zc

import (
	"encoding/binary"
	"fmt"

	"github.com/rawbytedev/unscrupulous/internal/common"
)

const (
	Magic      = 0x43534E55 // "UNSC"
	Version    = 1
	HeaderSize = 16

	FlagBigEndian   = 0x0001 // payload written by a big-endian host
	CompressionMask = 0x0006 // bits 1-2, Compression << 1
	FlagBLAKE3      = 0x0008 // BLAKE3-256 trailer instead of CRC-32
	knownFlags      = FlagBigEndian | CompressionMask | FlagBLAKE3
)

// Header is the fixed part of a frame. All fields are little-endian on
// the wire regardless of the host.
type Header struct {
	Magic    uint32 // 4B
	Version  uint16 // 2B
	Flags    uint16 // 2B
	ElemSize uint32 // 4B
	Count    uint32 // 4B
}

func newHeader(elemSize, count uint32, comp Compression, sum Checksum) Header {
	h := Header{
		Magic:    Magic,
		Version:  Version,
		Flags:    uint16(comp)<<1&CompressionMask,
		ElemSize: elemSize,
		Count:    count,
	}
	if common.IsBigEndian {
		h.Flags |= FlagBigEndian
	}
	if sum == ChecksumBLAKE3 {
		h.Flags |= FlagBLAKE3
	}
	return h
}

// BigEndian reports whether the payload was written by a big-endian host.
func (h Header) BigEndian() bool { return h.Flags&FlagBigEndian != 0 }

func (h Header) Compression() Compression {
	return Compression(h.Flags&CompressionMask>>1)
}

func (h Header) Checksum() Checksum {
	if h.Flags&FlagBLAKE3 != 0 {
		return ChecksumBLAKE3
	}
	return ChecksumCRC32
}

// PayloadSize is ElemSize*Count, the length of the decoded payload.
func (h Header) PayloadSize() uint64 {
	return uint64(h.ElemSize) * uint64(h.Count)
}

func (h Header) appendTo(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, h.Magic)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = binary.LittleEndian.AppendUint16(buf, h.Flags)
	buf = binary.LittleEndian.AppendUint32(buf, h.ElemSize)
	return binary.LittleEndian.AppendUint32(buf, h.Count)
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrShortFrame, len(buf), HeaderSize)
	}
	h := Header{
		Magic:    binary.LittleEndian.Uint32(buf[0:]),
		Version:  binary.LittleEndian.Uint16(buf[4:]),
		Flags:    binary.LittleEndian.Uint16(buf[6:]),
		ElemSize: binary.LittleEndian.Uint32(buf[8:]),
		Count:    binary.LittleEndian.Uint32(buf[12:]),
	}
	if h.Magic != Magic {
		return h, fmt.Errorf("%w: %#08x", ErrBadMagic, h.Magic)
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.Flags&^knownFlags != 0 {
		return h, fmt.Errorf("%w: flags %#04x", ErrUnsupported, h.Flags)
	}
	if c := h.Compression(); c > CompressionLZ4 {
		return h, fmt.Errorf("%w: compression %s", ErrUnsupported, c)
	}
	return h, nil
}
