// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package enumsynth synthesizes Go enumerations from families of integer
// macros that share a name prefix. A Registry holds one Group per prefix;
// the classification hook files each macro into the first matching group,
// and Render emits a type definition for every group that received at
// least one variant.
package enumsynth

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

var (
	// ErrInvalidGroup is returned when a group specification is unusable.
	ErrInvalidGroup = errors.New("invalid enum group")

	// ErrValueOverflow is returned by Render when a variant's value does
	// not fit its group's width.
	ErrValueOverflow = errors.New("enum value out of range")
)

// GroupSpec seeds one group of a Registry.
type GroupSpec struct {
	Prefix string        `mapstructure:"prefix" yaml:"prefix"`
	Name   string        `mapstructure:"name" yaml:"name"`
	Width  types.IntKind `mapstructure:"-" yaml:"-"`
}

// DefaultGroups returns the InkView seed set.
func DefaultGroups() []GroupSpec {
	return []GroupSpec{
		{Prefix: "EVT_", Name: "Event", Width: types.I32},
		{Prefix: "IV_KEY_", Name: "Key", Width: types.I32},
		{Prefix: "REQ_", Name: "Request", Width: types.I32},
		{Prefix: "ICON_", Name: "Icon", Width: types.I32},
		{Prefix: "DEF_", Name: "Button", Width: types.I32},
		{Prefix: "DITHER_", Name: "Dither", Width: types.I32},
	}
}

// Group is one virtual enumeration under construction.
type Group struct {
	Prefix   string
	Name     string
	Width    types.IntKind
	variants map[int64]string
	macros   map[int64]string // value -> source macro name
}

// Variant is a single (value, name) pair of a group.
type Variant struct {
	Name  string
	Value int64
}

// Variants returns the group's variants in ascending value order.
func (g Group) Variants() []Variant {
	out := make([]Variant, 0, len(g.variants))
	for v, name := range g.variants {
		out = append(out, Variant{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Macro returns the name of the macro that supplied value.
func (g Group) Macro(value int64) string {
	return g.macros[value]
}

// Len returns the number of recorded variants.
func (g Group) Len() int {
	return len(g.variants)
}

// Registry maps prefixes to groups. The set of prefixes is fixed at
// construction; only the groups' variants grow afterwards. All access goes
// through mu, and no method holds it while calling out of the package.
type Registry struct {
	mu     sync.Mutex
	groups []*Group // sorted by prefix
}

// NewRegistry builds a registry from seed specs. Prefixes must be non-empty
// and unique, and every group needs a name.
func NewRegistry(specs []GroupSpec) (*Registry, error) {
	seen := make(map[string]bool, len(specs))
	groups := make([]*Group, 0, len(specs))
	for _, s := range specs {
		if s.Prefix == "" {
			return nil, fmt.Errorf("%w: empty prefix for %q", ErrInvalidGroup, s.Name)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%w: empty name for prefix %q", ErrInvalidGroup, s.Prefix)
		}
		if seen[s.Prefix] {
			return nil, fmt.Errorf("%w: duplicate prefix %q", ErrInvalidGroup, s.Prefix)
		}
		seen[s.Prefix] = true
		groups = append(groups, &Group{
			Prefix:   s.Prefix,
			Name:     s.Name,
			Width:    s.Width,
			variants: make(map[int64]string),
			macros:   make(map[int64]string),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Prefix < groups[j].Prefix })
	return &Registry{groups: groups}, nil
}

// Prefixes returns the registered prefixes in match order.
func (r *Registry) Prefixes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.groups))
	for i, g := range r.groups {
		out[i] = g.Prefix
	}
	return out
}

// Snapshot returns copies of all groups, in prefix order. The copies are
// safe to read without holding the registry lock.
func (r *Registry) Snapshot() []Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Group, len(r.groups))
	for i, g := range r.groups {
		vs := make(map[int64]string, len(g.variants))
		for k, v := range g.variants {
			vs[k] = v
		}
		ms := make(map[int64]string, len(g.macros))
		for k, v := range g.macros {
			ms[k] = v
		}
		out[i] = Group{Prefix: g.Prefix, Name: g.Name, Width: g.Width, variants: vs, macros: ms}
	}
	return out
}
