// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package enumsynth

import (
	"math"
	"strings"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

// IntMacro classifies one integer macro. The first group, in prefix order,
// whose prefix starts name claims the macro: the value is recorded under the
// stripped name and the group's width is returned with the group set. An
// unclaimed macro gets I32 when the value fits and no preference otherwise.
//
// Re-recording a value overwrites the earlier name.
func (r *Registry) IntMacro(name string, value int64) types.MacroDecision {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.groups {
		if !strings.HasPrefix(name, g.Prefix) {
			continue
		}
		g.variants[value] = variantName(g, name)
		g.macros[value] = name
		return types.MacroDecision{Kind: g.Width, Group: g.Name}
	}

	if value >= math.MinInt32 && value <= math.MaxInt32 {
		return types.MacroDecision{Kind: types.I32}
	}
	return types.MacroDecision{Kind: types.IntKindDefault}
}

// variantName strips the group prefix. A leading digit is not a legal
// identifier start, so the upper-cased group name is prepended; a macro
// equal to the prefix becomes the upper-cased group name alone.
func variantName(g *Group, macro string) string {
	bare := macro[len(g.Prefix):]
	if bare == "" || (bare[0] >= '0' && bare[0] <= '9') {
		return strings.ToUpper(g.Name) + bare
	}
	return bare
}

// Classify runs the classification hook over macros in order and returns
// the decision for each macro name.
func Classify(r *Registry, macros []types.IntMacro) map[string]types.MacroDecision {
	decisions := make(map[string]types.MacroDecision, len(macros))
	for _, m := range macros {
		decisions[m.Name] = r.IntMacro(m.Name, m.Value)
	}
	return decisions
}
