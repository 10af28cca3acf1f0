package zc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// A stream is a sequence of frames, each preceded by its length as a
// little-endian uint32.

// StreamWriter writes length-prefixed frames to an io.Writer.
type StreamWriter struct {
	w   *bufio.Writer
	hdr [4]byte
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: bufio.NewWriter(w)}
}

// WriteFrame appends one encoded frame to the stream. The frame is copied
// into the internal buffer, so it may come straight from an Encoder.
func (s *StreamWriter) WriteFrame(frame []byte) error {
	if len(frame) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrShortFrame, len(frame))
	}
	if uint64(len(frame)) > 1<<32-1 {
		return fmt.Errorf("%w: frame of %d bytes", ErrUnsupported, len(frame))
	}
	binary.LittleEndian.PutUint32(s.hdr[:], uint32(len(frame)))
	if _, err := s.w.Write(s.hdr[:]); err != nil {
		return err
	}
	_, err := s.w.Write(frame)
	return err
}

// Flush writes any buffered frames to the underlying writer.
func (s *StreamWriter) Flush() error { return s.w.Flush() }

// StreamReader reads frames written by a StreamWriter.
type StreamReader struct {
	r   *bufio.Reader
	dec *Decoder
	buf []byte
}

func NewStreamReader(r io.Reader, opts Options) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r), dec: NewDecoder(opts)}
}

// Next decodes the next frame. It returns io.EOF at a clean end of stream
// and io.ErrUnexpectedEOF when the stream stops inside a frame. The
// returned payload may alias a buffer reused by the following call.
func (s *StreamReader) Next() (Frame, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	limit := uint64(s.dec.Opts.maxPayload()) + HeaderSize + binary.MaxVarintLen64 + uint64(ChecksumBLAKE3.size())
	if uint64(n) > limit {
		return Frame{}, fmt.Errorf("%w: frame of %d bytes exceeds %d", ErrUnsupported, n, limit)
	}
	if cap(s.buf) < int(n) {
		s.buf = make([]byte, n)
	}
	s.buf = s.buf[:n]
	if _, err := io.ReadFull(s.r, s.buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	return s.dec.Decode(s.buf)
}
