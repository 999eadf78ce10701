// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package output validates the two generated buffers, merges them into one
// gofmt-clean Go file, and writes that file atomically.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// ErrInvalidSource is returned when a generated buffer is not valid Go.
var ErrInvalidSource = errors.New("generated source does not parse")

// ValidateBindings checks that src parses as a complete Go file.
func ValidateBindings(src []byte) error {
	if _, err := parser.ParseFile(token.NewFileSet(), "bindings.go", src, parser.ParseComments); err != nil {
		return sourceError("bindings", src, 0, err)
	}
	return nil
}

// ValidateEnums checks that src parses as a list of top-level declarations.
// An empty buffer is valid.
func ValidateEnums(src []byte) error {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil
	}
	file, err := parser.ParseFile(token.NewFileSet(), "enums.go", append([]byte("package p\n"), src...), 0)
	if err != nil {
		return sourceError("enums", src, 1, err)
	}
	if len(file.Imports) > 0 {
		return fmt.Errorf("%w: enums must not carry imports", ErrInvalidSource)
	}
	return nil
}

// Merge appends enums to bindings, adds the imports the enum methods need,
// and formats the result.
func Merge(bindings, enums []byte) ([]byte, error) {
	var src bytes.Buffer
	src.Write(bindings)
	hasEnums := len(bytes.TrimSpace(enums)) > 0
	if hasEnums {
		src.WriteString("\n")
		src.Write(enums)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "merged.go", src.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, sourceError("merged", src.Bytes(), 0, err)
	}
	if hasEnums {
		astutil.AddImport(fset, file, "strconv")
	}
	return Format(fset, file)
}

// Format renders file with go/format.
func Format(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("formatting AST: %w", err)
	}
	return buf.Bytes(), nil
}
