// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"go/token"
	"unicode"
	"unicode/utf8"
)

// exportName turns a C identifier into an exported Go identifier by
// upper-casing its first letter. Names that cannot be exported that way
// get an X prefix.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || name == "" {
		return name
	}
	if unicode.IsUpper(r) {
		return name
	}
	if unicode.IsLower(r) {
		return string(unicode.ToUpper(r)) + name[size:]
	}
	return "X" + name
}

// paramName returns a usable Go parameter name for the i-th C parameter.
func paramName(name string, i int) string {
	switch {
	case name == "":
		return fmt.Sprintf("arg%d", i)
	case token.IsKeyword(name), name == "C", name == "unsafe":
		return name + "_"
	default:
		return name
	}
}
