// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bindgen is the public interface of inkview-bindgen, a generator
// of cgo bindings and typed enums for the PocketBook InkView SDK header.
package bindgen

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Error types for the Generator API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrParseFailure  = errors.New("failed to parse header")
	ErrEmitFailure   = errors.New("failed to emit bindings")
	ErrWriteFailure  = errors.New("failed to write bindings")
	ErrStale         = errors.New("bindings are out of date")
)

// GroupConfig seeds one synthesized enum: every integer macro starting
// with Prefix becomes a variant of Name.
type GroupConfig struct {
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Name   string `mapstructure:"name" yaml:"name"`
	Width  string `mapstructure:"width" yaml:"width"` // i32 when empty
}

// RenameConfig renames one native enum and strips a fixed-length prefix
// from its variants.
type RenameConfig struct {
	Original    string `mapstructure:"original" yaml:"original"`
	Public      string `mapstructure:"public" yaml:"public"`
	StripPrefix int    `mapstructure:"strip_prefix" yaml:"strip_prefix"`
}

// Config configures a Generator.
type Config struct {
	Output         string             `mapstructure:"output"`          // Generated file (default inkview_bindings.go)
	Package        string             `mapstructure:"package"`         // Go package name (default $GOPACKAGE, then inkview)
	Link           string             `mapstructure:"link"`            // Native library (default inkview)
	HeaderContents string             `mapstructure:"header_contents"` // Synthetic header
	IncludeDirs    []string           `mapstructure:"include"`         // SDK header directories
	Encoding       string             `mapstructure:"encoding"`        // Charset of SDK headers (default UTF-8)
	RulesFile      string             `mapstructure:"rules"`           // Symbol rules YAML (empty = embedded default)
	Groups         []GroupConfig      `mapstructure:"groups"`          // Enum groups (empty = InkView defaults)
	Rename         *RenameConfig      `mapstructure:"rename"`          // Enum rename (nil = PANEL_FLAGS to PanelType)
	BitfieldEnums  []string           `mapstructure:"bitfield_enums"`  // Enums that get a Has method
	NoProvenance   bool               `mapstructure:"no_provenance"`   // Skip the SDK revision stamp
	Logger         logrus.FieldLogger `mapstructure:"-"`
}

// Result holds the outcome of a generation pass.
type Result struct {
	Output   string         // Path of the generated file
	Revision string         // SDK revision stamped in the file, if any
	Enums    map[string]int // Variant count per synthesized enum
	Macros   int            // Integer macros seen in the header
	Funcs    int            // Functions bound
}

// CheckResult holds the outcome of a staleness check.
type CheckResult struct {
	Output     string
	Missing    bool    // The output file does not exist
	Stale      bool    // The output file differs from a fresh generation
	Diff       string  // Line diff from the file on disk to the fresh output
	Similarity float64 // Edit-distance ratio of the two, 1.0 when identical
}

// Generator produces the InkView bindings.
type Generator interface {
	// Generate parses the header, synthesizes the enums, and writes the
	// bindings file.
	Generate(ctx context.Context) (*Result, error)

	// Check regenerates in memory and compares with the file on disk. It
	// returns ErrStale along with the diff when they differ.
	Check(ctx context.Context) (*CheckResult, error)
}
