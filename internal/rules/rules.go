// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rules loads the allowlist/blocklist patterns that select which
// header symbols are exposed in the generated bindings.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

//go:embed default.yaml
var defaultRules []byte

// ErrInvalidRules is returned for unreadable or malformed rule files.
var ErrInvalidRules = errors.New("invalid rules")

// File is the on-disk rule document.
type File struct {
	Allowlist struct {
		Vars      []string `yaml:"vars"`
		Types     []string `yaml:"types"`
		Functions []string `yaml:"functions"`
	} `yaml:"allowlist"`
	Blocklist struct {
		Items []string `yaml:"items"`
	} `yaml:"blocklist"`
}

// Rules answers allow/block queries. Patterns match whole names.
type Rules struct {
	vars      []*regexp.Regexp
	types     []*regexp.Regexp
	functions []*regexp.Regexp
	blocked   []*regexp.Regexp
}

// Default returns the embedded InkView selection rules.
func Default() (*Rules, error) {
	return Parse(defaultRules)
}

// Load reads rules from path. An empty path yields the embedded defaults.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidRules, path, err)
	}
	return Parse(data)
}

// Parse decodes and compiles a YAML rule document.
func Parse(data []byte) (*Rules, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return Compile(f)
}

// Compile anchors and compiles every pattern in f.
func Compile(f File) (*Rules, error) {
	var r Rules
	var err error
	if r.vars, err = compileAll(f.Allowlist.Vars); err != nil {
		return nil, err
	}
	if r.types, err = compileAll(f.Allowlist.Types); err != nil {
		return nil, err
	}
	if r.functions, err = compileAll(f.Allowlist.Functions); err != nil {
		return nil, err
	}
	if r.blocked, err = compileAll(f.Blocklist.Items); err != nil {
		return nil, err
	}
	return &r, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRules, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Blocked reports whether name matches a blocklist pattern.
func (r *Rules) Blocked(name string) bool {
	return matchAny(r.blocked, name)
}

// Allowed reports whether a symbol of the given kind is selected: it must
// match an allowlist pattern for its kind and no blocklist pattern.
func (r *Rules) Allowed(kind types.SymbolKind, name string) bool {
	if r.Blocked(name) {
		return false
	}
	switch kind {
	case types.Var:
		return matchAny(r.vars, name)
	case types.Type:
		return matchAny(r.types, name)
	case types.Func:
		return matchAny(r.functions, name)
	default:
		return false
	}
}

func matchAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
