// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across inkview-bindgen packages.
package types

// SymbolKind identifies the category of a C symbol for rule matching.
type SymbolKind int

const (
	Var  SymbolKind = iota // Macro constant (integer or string)
	Type                   // Enum, record, or typedef
	Func                   // Function prototype
)

// String returns the human-readable name of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case Var:
		return "Var"
	case Type:
		return "Type"
	case Func:
		return "Func"
	default:
		return "Unknown"
	}
}
