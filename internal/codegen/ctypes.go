// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package codegen

import (
	"strings"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

// scalar pairs a C scalar type's cgo name with its Go type.
type scalar struct {
	cgo string
	gol string
}

var scalars = map[string]scalar{
	"int":                    {"int", "int32"},
	"signed":                 {"int", "int32"},
	"signed int":             {"int", "int32"},
	"unsigned":               {"uint", "uint32"},
	"unsigned int":           {"uint", "uint32"},
	"short":                  {"short", "int16"},
	"short int":              {"short", "int16"},
	"signed short":           {"short", "int16"},
	"unsigned short":         {"ushort", "uint16"},
	"unsigned short int":     {"ushort", "uint16"},
	"char":                   {"char", "int8"},
	"signed char":            {"schar", "int8"},
	"unsigned char":          {"uchar", "uint8"},
	"long":                   {"long", "int64"},
	"long int":               {"long", "int64"},
	"unsigned long":          {"ulong", "uint64"},
	"unsigned long int":      {"ulong", "uint64"},
	"long long":              {"longlong", "int64"},
	"long long int":          {"longlong", "int64"},
	"unsigned long long":     {"ulonglong", "uint64"},
	"unsigned long long int": {"ulonglong", "uint64"},
	"float":                  {"float", "float32"},
	"double":                 {"double", "float64"},
	"bool":                   {"bool", "bool"},
	"_Bool":                  {"_Bool", "bool"},
	"int8_t":                 {"int8_t", "int8"},
	"uint8_t":                {"uint8_t", "uint8"},
	"int16_t":                {"int16_t", "int16"},
	"uint16_t":               {"uint16_t", "uint16"},
	"int32_t":                {"int32_t", "int32"},
	"uint32_t":               {"uint32_t", "uint32"},
	"int64_t":                {"int64_t", "int64"},
	"uint64_t":               {"uint64_t", "uint64"},
	"size_t":                 {"size_t", "uint"},
}

// cgoName returns the cgo spelling of a C type without pointers, e.g.
// "uint", "struct_foo", "irect".
func cgoName(t types.CType) string {
	if t.Tag != "" {
		return t.Tag + "_" + t.Base
	}
	if s, ok := scalars[t.Base]; ok {
		return s.cgo
	}
	return strings.ReplaceAll(t.Base, " ", "_")
}

// goValue describes how one C value crosses the cgo boundary.
type goValue struct {
	Type string // Go type used in the wrapper signature
	ToC  string // format for converting a Go expression to C, %s is the expression
	ToGo string // format for converting a C expression to Go
}

// mapType picks the Go type and conversions for a C type. enums maps C enum
// names to the Go types emitted for them.
func mapType(t types.CType, enums map[string]string) goValue {
	if t.Pointers == 0 && t.Tag == "" {
		if s, ok := scalars[t.Base]; ok {
			return goValue{Type: s.gol, ToC: "C." + s.cgo + "(%s)", ToGo: s.gol + "(%s)"}
		}
		if goName, ok := enums[t.Base]; ok {
			return goValue{Type: goName, ToC: "C." + t.Base + "(%s)", ToGo: goName + "(%s)"}
		}
	}
	if t.Pointers == 1 && t.Base == "void" && t.Tag == "" {
		return goValue{Type: "unsafe.Pointer", ToC: "%s", ToGo: "%s"}
	}
	typ := strings.Repeat("*", t.Pointers) + "C." + cgoName(t)
	return goValue{Type: typ, ToC: "%s", ToGo: "%s"}
}
