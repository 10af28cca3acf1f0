package main

import (
	"errors"
	"fmt"
	"go/types"
	"io"
	"log/slog"
	"strings"

	"github.com/rawbytedev/unscrupulous/layout"
)

type layouts []layout.Layout

func (ls layouts) String() string {
	var b strings.Builder
	for i, l := range ls {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func runLayout(cfg *Config, args []string, stdout io.Writer, log *slog.Logger) error {
	if len(args) < 2 {
		return errors.New("layout: need a package and at least one type name")
	}
	sizes := types.SizesFor("gc", cfg.Arch)
	if sizes == nil {
		return fmt.Errorf("layout: unknown GOARCH %q", cfg.Arch)
	}
	pkgs, err := loadPackages(cfg.Dir, args[:1], log)
	if err != nil {
		return err
	}
	switch len(pkgs) {
	case 1:
	case 0:
		return fmt.Errorf("layout: %s matched no packages", args[0])
	default:
		return fmt.Errorf("layout: %s matched %d packages, want one", args[0], len(pkgs))
	}
	out, err := findLayouts(pkgs[0].Types, args[1:], sizes)
	if err != nil {
		return err
	}
	log.Debug("layouts computed", "package", pkgs[0].PkgPath, "arch", cfg.Arch, "types", len(out))
	return render(stdout, cfg.Format, out)
}

func findLayouts(pkg *types.Package, names []string, sizes types.Sizes) (layouts, error) {
	out := make(layouts, 0, len(names))
	for _, name := range names {
		tn, ok := pkg.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			return nil, fmt.Errorf("layout: %s.%s is not a type", pkg.Path(), name)
		}
		if named, ok := types.Unalias(tn.Type()).(*types.Named); ok && named.TypeParams().Len() > 0 {
			return nil, fmt.Errorf("layout: %s.%s is generic", pkg.Path(), name)
		}
		out = append(out, layout.FromTypes(tn.Type(), sizes))
	}
	return out, nil
}
