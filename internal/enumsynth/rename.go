// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package enumsynth

// RenameSpec renames one native enum declaration and strips a fixed-length
// prefix from each of its variants.
type RenameSpec struct {
	Original    string `mapstructure:"original" yaml:"original"`
	Public      string `mapstructure:"public" yaml:"public"`
	StripPrefix int    `mapstructure:"strip_prefix" yaml:"strip_prefix"`
}

// DefaultRename is the InkView panel-configuration bit-flag type.
func DefaultRename() RenameSpec {
	return RenameSpec{Original: "PANEL_FLAGS", Public: "PanelType", StripPrefix: 6}
}

// Renamer implements the item and enum-variant rename hooks. Both hooks
// take original (header) names; they are never fed their own output.
type Renamer struct {
	spec RenameSpec
}

// NewRenamer returns a Renamer for spec.
func NewRenamer(spec RenameSpec) *Renamer {
	return &Renamer{spec: spec}
}

// ItemName renames the configured declaration. Every other name gets no
// opinion.
func (r *Renamer) ItemName(original string) (string, bool) {
	if r.spec.Original == "" || r.spec.Public == "" || original != r.spec.Original {
		return "", false
	}
	return r.spec.Public, true
}

// EnumVariantName strips the configured prefix length from variants of the
// configured enum. Names no longer than the prefix are left alone.
func (r *Renamer) EnumVariantName(enumName, variant string, _ int64) (string, bool) {
	if r.spec.Original == "" || enumName != r.spec.Original {
		return "", false
	}
	n := r.spec.StripPrefix
	if n <= 0 || len(variant) <= n {
		return "", false
	}
	return variant[n:], true
}
