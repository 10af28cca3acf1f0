package main

import (
	"errors"
	"fmt"
	"go/types"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/tools/go/packages"

	"github.com/rawbytedev/unscrupulous/analyzer"
)

// Syntax is loaded so that unexported types are type-checked from source.
const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes

func loadPackages(dir string, patterns []string, log *slog.Logger) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := packages.Load(&packages.Config{Mode: loadMode, Dir: dir}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", strings.Join(patterns, " "), err)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	log.Debug("packages loaded", "patterns", patterns, "count", len(pkgs))
	return pkgs, nil
}

// typeResult is the verdict for one asserted type.
type typeResult struct {
	Name     string
	Problems []string
}

func checkPackage(pkg *packages.Package) []typeResult {
	var out []typeResult
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() || !analyzer.Asserts(tn.Type()) {
			continue
		}
		res := typeResult{Name: pkg.Name + "." + name}
		for _, p := range analyzer.Problems(tn.Type()) {
			res.Problems = append(res.Problems, fmt.Sprintf("%s: %s", pkg.Fset.Position(p.Pos), p))
		}
		if pos, ok := analyzer.TrailingPlain(tn.Type()); ok {
			res.Problems = append(res.Problems, fmt.Sprintf("%s: %s", pkg.Fset.Position(pos), analyzer.TrailingPlainMessage))
		}
		out = append(out, res)
	}
	return out
}

func runCheck(cfg *Config, args []string, stdout io.Writer, log *slog.Logger) error {
	pkgs, err := loadPackages(cfg.Dir, args, log)
	if err != nil {
		return err
	}
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	failed := 0
	for _, pkg := range pkgs {
		for _, res := range checkPackage(pkg) {
			if len(res.Problems) == 0 {
				fmt.Fprintf(stdout, "%s   %s\n", ok("ok"), res.Name)
				continue
			}
			failed++
			fmt.Fprintf(stdout, "%s %s\n", fail("FAIL"), res.Name)
			for _, p := range res.Problems {
				fmt.Fprintf(stdout, "\t%s\n", p)
			}
		}
	}
	if failed > 0 {
		log.Info("certification failed", "types", failed)
		return exitError(1)
	}
	return nil
}
