// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package bindgen

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"

	"github.com/sirupsen/logrus"

	internalbindgen "github.com/petar-djukic/inkview-bindgen/internal/bindgen"
	"github.com/petar-djukic/inkview-bindgen/internal/enumsynth"
	"github.com/petar-djukic/inkview-bindgen/internal/header"
	"github.com/petar-djukic/inkview-bindgen/internal/rules"
	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

const (
	defaultOutput  = "inkview_bindings.go"
	defaultPackage = "inkview"
	defaultLink    = "inkview"

	// DefaultHeaderContents pulls in the SDK header plus one forward
	// declaration the SDK ships without a prototype.
	DefaultHeaderContents = "#include <inkview.h>\n" +
		"void DrawCircleLine(int x1, int y1, int x2, int y2, int width, int color);\n"
)

// New validates the config, loads the symbol rules, and returns a
// ready-to-use Generator. It does not read the header; that happens in
// Generate and Check.
func New(cfg Config) (Generator, error) {
	applyDefaults(&cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	r, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	groups, err := groupSpecs(cfg.Groups)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	// Catch duplicate or empty prefixes before the first run.
	if _, err := enumsynth.NewRegistry(groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	runner := internalbindgen.NewRunner(internalbindgen.Deps{
		Log:    cfg.Logger,
		Rules:  r,
		Groups: groups,
		Rename: enumsynth.RenameSpec{
			Original:    cfg.Rename.Original,
			Public:      cfg.Rename.Public,
			StripPrefix: cfg.Rename.StripPrefix,
		},
		Source: header.Source{
			Name:        "inkview-wrapper.h",
			Contents:    cfg.HeaderContents,
			IncludeDirs: cfg.IncludeDirs,
			Encoding:    cfg.Encoding,
		},
		Output:        cfg.Output,
		Package:       cfg.Package,
		Link:          cfg.Link,
		BitfieldEnums: cfg.BitfieldEnums,
		NoProvenance:  cfg.NoProvenance,
	})

	return &generatorAdapter{runner: runner}, nil
}

// generatorAdapter adapts internal/bindgen.Runner to the public Generator
// interface.
type generatorAdapter struct {
	runner *internalbindgen.Runner
}

func (a *generatorAdapter) Generate(ctx context.Context) (*Result, error) {
	ir, err := a.runner.Generate(ctx)
	res := toResult(ir)
	if err != nil {
		return res, classify(err)
	}
	return res, nil
}

func (a *generatorAdapter) Check(ctx context.Context) (*CheckResult, error) {
	ir, cr, err := a.runner.Check(ctx)
	if err != nil {
		out := &CheckResult{}
		if ir != nil {
			out.Output = ir.Output
		}
		return out, classify(err)
	}
	out := &CheckResult{
		Output:     cr.Path,
		Missing:    cr.Missing,
		Stale:      cr.Stale,
		Diff:       cr.Diff,
		Similarity: cr.Similarity,
	}
	if cr.Stale {
		return out, fmt.Errorf("%w: %s", ErrStale, cr.Path)
	}
	return out, nil
}

func toResult(ir *internalbindgen.RunResult) *Result {
	if ir == nil {
		return &Result{}
	}
	return &Result{
		Output:   ir.Output,
		Revision: ir.Revision,
		Enums:    ir.Enums,
		Macros:   ir.Stats.IntMacros,
		Funcs:    ir.Stats.Functions,
	}
}

// classify maps a runner failure onto the public sentinel for its stage.
func classify(err error) error {
	var se *internalbindgen.StageError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Stage {
	case internalbindgen.StageParse:
		return fmt.Errorf("%w: %v", ErrParseFailure, se.Err)
	case internalbindgen.StageEmit:
		return fmt.Errorf("%w: %v", ErrEmitFailure, se.Err)
	case internalbindgen.StageWrite:
		return fmt.Errorf("%w: %v", ErrWriteFailure, se.Err)
	default:
		return err
	}
}

// validateConfig checks values that defaults cannot repair.
func validateConfig(cfg Config) error {
	if !token.IsIdentifier(cfg.Package) || token.IsKeyword(cfg.Package) {
		return fmt.Errorf("package %q is not a valid Go identifier", cfg.Package)
	}
	for _, dir := range cfg.IncludeDirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("include directory %q does not exist or is not a directory", dir)
		}
	}
	if cfg.Rename.StripPrefix < 0 {
		return fmt.Errorf("rename strip_prefix must not be negative")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Package == "" {
		cfg.Package = os.Getenv("GOPACKAGE")
	}
	if cfg.Package == "" {
		cfg.Package = defaultPackage
	}
	if cfg.Link == "" {
		cfg.Link = defaultLink
	}
	if cfg.HeaderContents == "" {
		cfg.HeaderContents = DefaultHeaderContents
	}
	if len(cfg.Groups) == 0 {
		for _, g := range enumsynth.DefaultGroups() {
			cfg.Groups = append(cfg.Groups, GroupConfig{Prefix: g.Prefix, Name: g.Name, Width: g.Width.String()})
		}
	}
	if cfg.Rename == nil {
		d := enumsynth.DefaultRename()
		cfg.Rename = &RenameConfig{Original: d.Original, Public: d.Public, StripPrefix: d.StripPrefix}
	}
	if cfg.BitfieldEnums == nil {
		cfg.BitfieldEnums = []string{cfg.Rename.Public}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
}

// groupSpecs converts the public group config, defaulting widths to i32.
func groupSpecs(groups []GroupConfig) ([]enumsynth.GroupSpec, error) {
	specs := make([]enumsynth.GroupSpec, 0, len(groups))
	for _, g := range groups {
		width := types.I32
		if g.Width != "" {
			k, err := types.ParseIntKind(g.Width)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			width = k
		}
		specs = append(specs, enumsynth.GroupSpec{Prefix: g.Prefix, Name: g.Name, Width: width})
	}
	return specs, nil
}
