// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// IntMacro is an object-like macro whose value evaluated to an integer.
// Exposed is set when the selection rules expose it as a standalone
// constant.
type IntMacro struct {
	Name    string
	Value   int64
	Line    int // Line in the merged header (1-based)
	Exposed bool
}

// StringMacro is an object-like macro whose value is a string literal.
type StringMacro struct {
	Name  string
	Value string
	Line  int
}

// CType describes a C type as written in a declaration.
type CType struct {
	Base     string // Base type name, e.g. "int", "unsigned int", "ibitmap"
	Tag      string // "struct", "union", or "enum" when written with a tag keyword
	Pointers int    // Levels of pointer indirection
	Const    bool   // Base is const-qualified
	Array    string // Array length expression, empty when not an array
}

// IsVoid reports whether the type is plain void (no pointers).
func (t CType) IsVoid() bool {
	return t.Base == "void" && t.Pointers == 0 && t.Tag == ""
}

// Param is a function parameter.
type Param struct {
	Name string
	Type CType
}

// Function is a C function prototype.
type Function struct {
	Name     string
	Result   CType
	Params   []Param
	Variadic bool
	Doc      string
	Line     int
}

// Enumerator is a single member of a C enum.
type Enumerator struct {
	Name  string
	Value int64
}

// EnumDecl is a C enum declaration. Name is the typedef name when present,
// otherwise the tag.
type EnumDecl struct {
	Name        string
	Tag         string
	Enumerators []Enumerator
	Doc         string
	Line        int
}

// RecordDecl is a struct or union declaration.
type RecordDecl struct {
	Name    string // Typedef name, empty when only tagged
	Tag     string
	IsUnion bool
	Doc     string
	Line    int
}

// TypedefDecl is a plain typedef of another type.
type TypedefDecl struct {
	Name   string
	Target CType
	Line   int
}

// Bindings is the structured output of the header parser. Macro slices keep
// discovery order.
type Bindings struct {
	IntMacros    []IntMacro
	StringMacros []StringMacro
	Functions    []Function
	Enums        []EnumDecl
	Records      []RecordDecl
	Typedefs     []TypedefDecl
}
