// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"math"
	"strings"
)

// IntKind is the integer storage width chosen for a constant or enum.
type IntKind int

const (
	IntKindDefault IntKind = iota // No preference; default inference applies
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
)

var intKindNames = map[IntKind]string{
	IntKindDefault: "default",
	I8:             "i8",
	U8:             "u8",
	I16:            "i16",
	U16:            "u16",
	I32:            "i32",
	U32:            "u32",
	I64:            "i64",
	U64:            "u64",
}

var intKindGoTypes = map[IntKind]string{
	I8:  "int8",
	U8:  "uint8",
	I16: "int16",
	U16: "uint16",
	I32: "int32",
	U32: "uint32",
	I64: "int64",
	U64: "uint64",
}

func (k IntKind) String() string {
	if s, ok := intKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("IntKind(%d)", int(k))
}

// GoType returns the Go integer type for the kind, or "" for IntKindDefault.
func (k IntKind) GoType() string {
	return intKindGoTypes[k]
}

// Fits reports whether v is representable in the kind. IntKindDefault
// accepts every value.
func (k IntKind) Fits(v int64) bool {
	switch k {
	case I8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case U8:
		return v >= 0 && v <= math.MaxUint8
	case I16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case U16:
		return v >= 0 && v <= math.MaxUint16
	case I32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case U32:
		return v >= 0 && v <= math.MaxUint32
	case U64:
		return v >= 0
	default:
		return true
	}
}

// ParseIntKind parses names such as "i32" or "u32". The empty string and
// "default" yield IntKindDefault.
func ParseIntKind(s string) (IntKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IntKindDefault, nil
	}
	for k, name := range intKindNames {
		if name == s {
			return k, nil
		}
	}
	return IntKindDefault, fmt.Errorf("unknown integer kind %q", s)
}

// MacroDecision is the outcome of classifying one integer macro. A non-empty
// Group means an enumeration owns the value and the macro must not be
// emitted as a standalone constant.
type MacroDecision struct {
	Kind  IntKind
	Group string
}

// Owned reports whether an enumeration group claimed the macro.
func (d MacroDecision) Owned() bool {
	return d.Group != ""
}
