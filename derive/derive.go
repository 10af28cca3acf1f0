// Package derive grants certification to a type after checking, field by
// field, that everything it contains is certified.
//
// It is the run-time counterpart of the analyzer package: the analyzer
// rejects a bad type before the program is built, derive rejects it when the
// certificate is requested. Call MustDerive from a package-level var so the
// refusal happens during initialisation:
//
//	var pointCert = derive.MustDerive[Point]()
//
// derive also audits types that embed unscrupulous.Plain: an assertion that
// hides a pointer two structs down is reported like any other field.
package derive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"structs"
	"sync"

	"github.com/rawbytedev/unscrupulous"
	"github.com/rawbytedev/unscrupulous/internal/common"
	"github.com/rawbytedev/unscrupulous/layout"
)

var (
	ErrNotCertified = errors.New("not certified")
	ErrPadding      = errors.New("type has padding bytes")
)

var (
	markerType     = reflect.TypeFor[unscrupulous.Unscrupulous]()
	plainType      = reflect.TypeFor[unscrupulous.Plain]()
	hostLayoutType = reflect.TypeFor[structs.HostLayout]()
)

// FieldError reports the field that prevented certification.
type FieldError struct {
	Type   reflect.Type // type being derived
	Path   string       // dotted path to the field, "" for Type itself
	Field  reflect.Type // offending field type
	Reason string
	err    error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("derive: %s: %s: %s", e.Type, e.err, e.Reason)
	}
	return fmt.Sprintf("derive: %s: field %s: %s is %s: %s", e.Type, e.Path, e.Field, e.err, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.err }

type Options struct {
	// RejectPadding refuses types whose layout has padding bytes. Padding
	// is part of every view and its content is not specified.
	RejectPadding bool

	// Logger receives one debug record per type checked. Nil discards.
	Logger *slog.Logger
}

// Checker checks and caches certification decisions. It is safe for
// concurrent use.
type Checker struct {
	Opts Options
	mu   sync.RWMutex
	plan map[reflect.Type]*Plan
}

// Plan is the cached decision for one type.
type Plan struct {
	Type   reflect.Type
	Layout layout.Layout
	Err    error
}

func NewChecker(opts Options) *Checker {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Checker{
		Opts: opts,
		plan: make(map[reflect.Type]*Plan),
	}
}

// Default is the checker used by the package-level functions.
var Default = NewChecker(Options{})

// Check reports whether t can be certified. The error is a *FieldError.
func (c *Checker) Check(t reflect.Type) error {
	return c.getPlan(t).Err
}

// Plan returns the cached decision for t, computing it on first use.
func (c *Checker) Plan(t reflect.Type) *Plan {
	return c.getPlan(t)
}

func (c *Checker) getPlan(t reflect.Type) *Plan {
	c.mu.RLock()
	if plan, ok := c.plan[t]; ok {
		c.mu.RUnlock()
		return plan
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if plan, ok := c.plan[t]; ok {
		return plan
	}

	plan := &Plan{Type: t, Layout: layout.FromReflect(t)}
	if err := check(t, t, ""); err != nil {
		plan.Err = err
	} else if c.Opts.RejectPadding && plan.Layout.HasPadding() {
		first := plan.Layout.Padding[0]
		plan.Err = &FieldError{
			Type:   t,
			Field:  t,
			Reason: fmt.Sprintf("%d padding bytes, first at offset %d", plan.Layout.PaddingBytes(), first.Offset),
			err:    ErrPadding,
		}
	}
	c.Opts.Logger.Debug("certification checked",
		"type", t.String(),
		"size", plan.Layout.Size,
		"certified", plan.Err == nil,
	)
	c.plan[t] = plan
	return plan
}

func check(root, t reflect.Type, path string) *FieldError {
	k := t.Kind()
	if common.IsScalarKind(k) {
		return nil
	}
	switch k {
	case reflect.Array:
		return check(root, t.Elem(), path+"[]")
	case reflect.Struct:
		if t == plainType || t == hostLayoutType {
			return nil
		}
		if path != "" && t.Name() != "" && !t.Implements(markerType) {
			return &FieldError{Type: root, Path: path, Field: t, Reason: "named struct does not embed unscrupulous.Plain", err: ErrNotCertified}
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if err := check(root, sf.Type, joinPath(path, sf.Name)); err != nil {
				return err
			}
		}
		return nil
	default:
		return &FieldError{Type: root, Path: path, Field: t, Reason: common.KindReason(k), err: ErrNotCertified}
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Check reports whether t can be certified, using Default.
func Check(t reflect.Type) error {
	return Default.Check(t)
}

// CheckValue is Check(reflect.TypeOf(v)).
func CheckValue(v any) error {
	if v == nil {
		return &FieldError{Reason: "nil interface", err: ErrNotCertified}
	}
	return Default.Check(reflect.TypeOf(v))
}
