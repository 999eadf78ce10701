// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package enumsynth

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var enumTemplate = template.Must(template.ParseFS(templateFS, "templates/enum.tmpl"))

// enumData is the template input for one synthesized enumeration.
type enumData struct {
	Name     string
	Prefix   string
	Repr     string
	Variants []Variant
}

// Render emits a Go type definition for every group holding at least one
// variant, in prefix order. Variants are listed by ascending value, each
// with its value spelled out. Only i32 and u32 carry a fixed
// representation; other widths fall back to int. A variant whose value does
// not fit the group's width fails with ErrValueOverflow naming the macro.
//
// The result is a declaration list without a package clause, meant to be
// appended to the binding source. It is empty when no group has variants.
func (r *Registry) Render() ([]byte, error) {
	var buf bytes.Buffer
	for _, g := range r.Snapshot() {
		if g.Len() == 0 {
			continue
		}
		variants := g.Variants()
		for _, v := range variants {
			if !g.Width.Fits(v.Value) {
				return nil, fmt.Errorf("%w: %s = %d does not fit %s enum %s",
					ErrValueOverflow, g.Macro(v.Value), v.Value, g.Width, g.Name)
			}
		}
		data := enumData{
			Name:     g.Name,
			Prefix:   g.Prefix,
			Repr:     reprFor(g.Width),
			Variants: variants,
		}
		if err := enumTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering enum %s: %w", g.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func reprFor(k types.IntKind) string {
	switch k {
	case types.I32, types.U32:
		return k.GoType()
	default:
		return "int"
	}
}
