// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolKind_String(t *testing.T) {
	assert.Equal(t, "Var", Var.String())
	assert.Equal(t, "Type", Type.String())
	assert.Equal(t, "Func", Func.String())
	assert.Equal(t, "Unknown", SymbolKind(42).String())
}

func TestFunctionDeclarationAndKindCoexist(t *testing.T) {
	fn := Function{Name: "OpenScreen", Result: CType{Base: "void"}}

	assert.Equal(t, Func, SymbolKind(2))
	assert.True(t, fn.Result.IsVoid())
}
