// Package layout describes the in-memory layout of a type: its size,
// alignment, field offsets and padding, as seen by reflect at run time or
// by go/types for any GOARCH at build time.
//
// A layout only states what one toolchain did for one architecture. It says
// nothing about whether another build will agree; pinning (a
// structs.HostLayout field) is reported but not enforced.
package layout

import (
	"fmt"
	"sort"
	"strings"
)

// Layout is the memory layout of one type.
type Layout struct {
	Type    string  `yaml:"type" json:"type" cbor:"type"`
	Size    int64   `yaml:"size" json:"size" cbor:"size"`
	Align   int64   `yaml:"align" json:"align" cbor:"align"`
	Pinned  bool    `yaml:"pinned" json:"pinned" cbor:"pinned"`
	Fields  []Field `yaml:"fields,omitempty" json:"fields,omitempty" cbor:"fields,omitempty"`
	Padding []Span  `yaml:"padding,omitempty" json:"padding,omitempty" cbor:"padding,omitempty"`
}

// Field is a leaf field, addressed by its dotted path from the root type.
// Arrays are leaves; structs are flattened.
type Field struct {
	Path   string `yaml:"path" json:"path" cbor:"path"`
	Type   string `yaml:"type" json:"type" cbor:"type"`
	Offset int64  `yaml:"offset" json:"offset" cbor:"offset"`
	Size   int64  `yaml:"size" json:"size" cbor:"size"`
	Align  int64  `yaml:"align" json:"align" cbor:"align"`
}

// Span is a run of bytes not covered by any field.
type Span struct {
	Offset int64 `yaml:"offset" json:"offset" cbor:"offset"`
	Size   int64 `yaml:"size" json:"size" cbor:"size"`
}

// HasPadding reports whether any byte of the type belongs to no field.
func (l Layout) HasPadding() bool { return len(l.Padding) > 0 }

// PaddingBytes is the total number of padding bytes.
func (l Layout) PaddingBytes() int64 {
	var n int64
	for _, s := range l.Padding {
		n += s.Size
	}
	return n
}

func (l Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s size=%d align=%d", l.Type, l.Size, l.Align)
	if l.Pinned {
		b.WriteString(" pinned")
	}
	for _, f := range l.Fields {
		fmt.Fprintf(&b, "\n  %4d %-20s %s (%d)", f.Offset, f.Path, f.Type, f.Size)
	}
	for _, s := range l.Padding {
		fmt.Fprintf(&b, "\n  %4d %-20s (%d)", s.Offset, "<padding>", s.Size)
	}
	return b.String()
}

// gaps returns the spans of [0, size) not covered by used, coalesced.
func gaps(size int64, used []Span) []Span {
	sort.Slice(used, func(i, j int) bool { return used[i].Offset < used[j].Offset })
	var out []Span
	var cursor int64
	for _, u := range used {
		if u.Size == 0 {
			continue
		}
		if u.Offset > cursor {
			out = appendSpan(out, Span{Offset: cursor, Size: u.Offset - cursor})
		}
		if end := u.Offset + u.Size; end > cursor {
			cursor = end
		}
	}
	if size > cursor {
		out = appendSpan(out, Span{Offset: cursor, Size: size - cursor})
	}
	return out
}

func appendSpan(out []Span, s Span) []Span {
	if n := len(out); n > 0 && out[n-1].Offset+out[n-1].Size == s.Offset {
		out[n-1].Size += s.Size
		return out
	}
	return append(out, s)
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
