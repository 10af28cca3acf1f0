// Package zc (zero-copy) frames the byte views of certified values so they
// can be stored or sent, and hands numeric payloads back without copying
// when alignment allows.
//
// A frame records the element size, the element count and the byte order
// of the host that produced it. Decoding checks those three and the
// checksum, nothing more: only integers and floats, whose every bit
// pattern is a valid value, can be turned back into Go values. Any other
// payload is returned as bytes.
package zc

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic     = errors.New("zc: bad magic")
	ErrVersion      = errors.New("zc: unsupported version")
	ErrChecksum     = errors.New("zc: checksum mismatch")
	ErrShortFrame   = errors.New("zc: short frame")
	ErrSizeMismatch = errors.New("zc: element size mismatch")
	ErrByteOrder    = errors.New("zc: foreign byte order")
	ErrUnsupported  = errors.New("zc: unsupported frame")
)

// Compression selects how the payload of a frame is compressed.
// The values are stored in the frame header.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses the String form of a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("zc: unknown compression %q", name)
	}
}

// Checksum selects the frame trailer.
type Checksum uint8

const (
	ChecksumCRC32  Checksum = 0 // CRC-32 IEEE, 4 bytes
	ChecksumBLAKE3 Checksum = 1 // BLAKE3-256, 32 bytes
)

func (c Checksum) String() string {
	if c == ChecksumBLAKE3 {
		return "blake3"
	}
	return "crc32"
}

func (c Checksum) size() int {
	if c == ChecksumBLAKE3 {
		return 32
	}
	return 4
}

// Options contains runtime flags controlling frames.
type Options struct {
	// Compression applies to encoding. Payloads that do not shrink are
	// stored raw and the header says so.
	Compression Compression

	// Checksum applies to encoding; decoding follows the header.
	Checksum Checksum

	// ZeroCopy lets DecodeNumbers alias the frame payload instead of
	// copying it, when the payload is suitably aligned.
	ZeroCopy bool

	// MaxPayload bounds the decoded payload size. Zero means
	// DefaultMaxPayload.
	MaxPayload int
}

// DefaultMaxPayload is the payload bound used when Options.MaxPayload is 0.
const DefaultMaxPayload = 256 << 20

func (o Options) maxPayload() int {
	if o.MaxPayload > 0 {
		return o.MaxPayload
	}
	return DefaultMaxPayload
}
