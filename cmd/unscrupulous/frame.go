package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rawbytedev/unscrupulous/zc"
)

// frameInfo summarizes one frame file.
type frameInfo struct {
	File        string `yaml:"file" json:"file" cbor:"file"`
	ElemSize    uint32 `yaml:"elem_size" json:"elem_size" cbor:"elem_size"`
	Count       uint32 `yaml:"count" json:"count" cbor:"count"`
	Payload     int    `yaml:"payload" json:"payload" cbor:"payload"`
	Stored      int    `yaml:"stored" json:"stored" cbor:"stored"`
	Compression string `yaml:"compression" json:"compression" cbor:"compression"`
	Checksum    string `yaml:"checksum" json:"checksum" cbor:"checksum"`
	ByteOrder   string `yaml:"byte_order" json:"byte_order" cbor:"byte_order"`
}

type frameInfos []frameInfo

func (fs frameInfos) String() string {
	var b strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&b, "%s: %d x %d bytes, %s endian, %s, %s, %d bytes stored\n",
			f.File, f.Count, f.ElemSize, f.ByteOrder, f.Compression, f.Checksum, f.Stored)
	}
	return b.String()
}

func inspectFrame(name string, buf []byte, dec *zc.Decoder) (frameInfo, error) {
	f, err := dec.Decode(buf)
	if err != nil {
		return frameInfo{}, fmt.Errorf("%s: %w", name, err)
	}
	order := "little"
	if f.BigEndian() {
		order = "big"
	}
	return frameInfo{
		File:        name,
		ElemSize:    f.ElemSize,
		Count:       f.Count,
		Payload:     len(f.Payload),
		Stored:      len(buf),
		Compression: f.Compression().String(),
		Checksum:    f.Checksum().String(),
		ByteOrder:   order,
	}, nil
}

func runFrame(cfg *Config, args []string, stdout io.Writer, log *slog.Logger) error {
	if len(args) == 0 {
		return errors.New("frame: need at least one file")
	}
	dec := zc.NewDecoder(zc.Options{})
	out := make(frameInfos, 0, len(args))
	for _, name := range args {
		buf, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		info, err := inspectFrame(name, buf, dec)
		if err != nil {
			return err
		}
		log.Debug("frame decoded", "file", name, "count", info.Count, "compression", info.Compression)
		out = append(out, info)
	}
	return render(stdout, cfg.Format, out)
}
