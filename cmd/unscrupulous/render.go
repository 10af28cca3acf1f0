package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// render writes v to w in the named format. The text format requires v to
// implement fmt.Stringer.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "text", "":
		s, ok := v.(fmt.Stringer)
		if !ok {
			return fmt.Errorf("format text: %T has no text form", v)
		}
		_, err := io.WriteString(w, s.String())
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "cbor":
		b, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "diag":
		b, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		d, err := cbor.Diagnose(b)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, d)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
