// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bindgen implements the Runner that wires the header parser, the
// enum synthesizer, and the binding emitter into one generation pass.
package bindgen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/inkview-bindgen/internal/check"
	"github.com/petar-djukic/inkview-bindgen/internal/codegen"
	"github.com/petar-djukic/inkview-bindgen/internal/enumsynth"
	gitpkg "github.com/petar-djukic/inkview-bindgen/internal/git"
	"github.com/petar-djukic/inkview-bindgen/internal/header"
	"github.com/petar-djukic/inkview-bindgen/internal/output"
	"github.com/petar-djukic/inkview-bindgen/internal/rules"
)

// Stage names the step of a run that failed.
type Stage int

const (
	StageParse Stage = iota + 1
	StageEmit
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageEmit:
		return "emit"
	case StageWrite:
		return "write"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageError ties a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Stage.String() + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// RunResult holds the outcome of a generation pass.
type RunResult struct {
	Output   string
	Source   []byte         // Formatted file contents
	Revision string         // SDK revision, empty when unknown
	Stats    header.Stats   // Header parse summary
	Enums    map[string]int // Variant count per synthesized enum
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	Log           logrus.FieldLogger
	Rules         *rules.Rules
	Groups        []enumsynth.GroupSpec
	Rename        enumsynth.RenameSpec
	Source        header.Source
	Output        string
	Package       string
	Link          string
	BitfieldEnums []string
	NoProvenance  bool

	// Revision reads the SDK revision for a directory. Defaults to the git
	// HEAD of the repository around it.
	Revision func(dir string) (string, error)
}

// Runner runs the generation pipeline.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Revision == nil {
		deps.Revision = gitpkg.Revision
	}
	return &Runner{deps: deps}
}

// Generate builds the bindings and writes them to the output path.
func (r *Runner) Generate(ctx context.Context) (*RunResult, error) {
	res, err := r.build(ctx)
	if err != nil {
		return res, err
	}
	if err := output.WriteFile(r.deps.Output, res.Source); err != nil {
		return res, fail(StageWrite, err)
	}
	r.deps.Log.WithFields(logrus.Fields{
		"output": r.deps.Output,
		"bytes":  len(res.Source),
	}).Info("wrote bindings")
	return res, nil
}

// Check builds the bindings in memory and compares them with the output
// file. A stale file is reported through the check result, not an error.
func (r *Runner) Check(ctx context.Context) (*RunResult, *check.Result, error) {
	res, err := r.build(ctx)
	if err != nil {
		return res, nil, err
	}
	cr, err := check.File(r.deps.Output, res.Source)
	if err != nil {
		return res, nil, fail(StageWrite, err)
	}
	r.deps.Log.WithFields(logrus.Fields{
		"output":     r.deps.Output,
		"stale":      cr.Stale,
		"similarity": cr.Similarity,
	}).Debug("checked bindings")
	return res, cr, nil
}

// build runs parse, classify, both renders, validation, and the merge.
func (r *Runner) build(ctx context.Context) (*RunResult, error) {
	log := r.deps.Log
	res := &RunResult{Output: r.deps.Output}

	// Step 1: Parse the header.
	b, stats, err := header.NewParser(r.deps.Rules, log).Parse(ctx, r.deps.Source)
	if err != nil {
		return res, fail(StageParse, err)
	}
	res.Stats = stats
	log.WithFields(logrus.Fields{
		"files":         stats.Files,
		"unresolved":    stats.Unresolved,
		"int_macros":    stats.IntMacros,
		"string_macros": stats.StringMacros,
		"functions":     stats.Functions,
		"enums":         stats.Enums,
		"records":       stats.Records,
		"typedefs":      stats.Typedefs,
	}).Info("parsed header")

	// Step 2: Classify every integer macro in discovery order.
	reg, err := enumsynth.NewRegistry(r.deps.Groups)
	if err != nil {
		return res, fail(StageEmit, err)
	}
	decisions := enumsynth.Classify(reg, b.IntMacros)

	res.Enums = make(map[string]int)
	for _, g := range reg.Snapshot() {
		res.Enums[g.Name] = g.Len()
		log.WithFields(logrus.Fields{"enum": g.Name, "prefix": g.Prefix, "variants": g.Len()}).Debug("synthesized enum")
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Revision = r.revision()

	// Step 3: Render the bindings.
	bindings, err := codegen.Render(codegen.Input{
		Bindings:  b,
		Decisions: decisions,
		Hooks:     enumsynth.NewRenamer(r.deps.Rename),
	}, codegen.Options{
		Package:        r.deps.Package,
		Link:           r.deps.Link,
		HeaderContents: r.deps.Source.Contents,
		BitfieldEnums:  r.deps.BitfieldEnums,
		Revision:       res.Revision,
	})
	if err != nil {
		return res, fail(StageEmit, err)
	}
	if err := output.ValidateBindings(bindings); err != nil {
		return res, fail(StageEmit, err)
	}

	// Step 4: Render the synthesized enums.
	enums, err := reg.Render()
	if err != nil {
		return res, fail(StageEmit, err)
	}
	if err := output.ValidateEnums(enums); err != nil {
		return res, fail(StageEmit, err)
	}

	// Step 5: Merge once and format.
	merged, err := output.Merge(bindings, enums)
	if err != nil {
		return res, fail(StageEmit, err)
	}
	res.Source = merged
	return res, nil
}

// revision reads the SDK revision from the first include directory.
// Failures only cost the stamp.
func (r *Runner) revision() string {
	if r.deps.NoProvenance || len(r.deps.Source.IncludeDirs) == 0 {
		return ""
	}
	dir := r.deps.Source.IncludeDirs[0]
	rev, err := r.deps.Revision(dir)
	if err != nil {
		r.deps.Log.WithError(err).WithField("dir", dir).Debug("no SDK revision")
		return ""
	}
	return rev
}
