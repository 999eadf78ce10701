// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package enumsynth

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"strings"
	"testing"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseDecls parses rendered enum output as the body of a Go file.
func parseDecls(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "enums.go", "package p\n"+string(src), 0)
	require.NoError(t, err, "rendered enums should parse:\n%s", src)
	return f
}

// constValues returns the constants declared for typeName in source order.
func constValues(f *ast.File, typeName string) []string {
	var out []string
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			if id, ok := vs.Type.(*ast.Ident); !ok || id.Name != typeName {
				continue
			}
			lit := vs.Values[0]
			val := ""
			switch v := lit.(type) {
			case *ast.BasicLit:
				val = v.Value
			case *ast.UnaryExpr:
				val = v.Op.String() + v.X.(*ast.BasicLit).Value
			}
			out = append(out, vs.Names[0].Name+"="+val)
		}
	}
	return out
}

func typeUnderlying(f *ast.File, name string) string {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Name.Name == name {
				return ts.Type.(*ast.Ident).Name
			}
		}
	}
	return ""
}

// stdlibStub serves a minimal strconv so rendered enums type-check without
// compiled standard library export data.
type stdlibStub map[string]*gotypes.Package

func (s stdlibStub) Import(path string) (*gotypes.Package, error) {
	if p, ok := s[path]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("package %s not available", path)
}

// typeCheck type-checks rendered enum output as a complete Go file.
func typeCheck(t *testing.T, src []byte) {
	t.Helper()
	fset := token.NewFileSet()
	strconvFile, err := parser.ParseFile(fset, "strconv.go",
		"package strconv\nfunc FormatInt(i int64, base int) string { return \"\" }\n", 0)
	require.NoError(t, err)
	strconvPkg, err := (&gotypes.Config{}).Check("strconv", fset, []*ast.File{strconvFile}, nil)
	require.NoError(t, err)

	f, err := parser.ParseFile(fset, "enums.go", "package p\n\nimport \"strconv\"\n\n"+string(src), 0)
	require.NoError(t, err)
	conf := gotypes.Config{Importer: stdlibStub{"strconv": strconvPkg}}
	_, err = conf.Check("p", fset, []*ast.File{f}, nil)
	require.NoError(t, err, "rendered enums should type-check:\n%s", src)
}

func TestRender_EventScenario(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)

	r.IntMacro("EVT_KEYDOWN", 3)
	r.IntMacro("EVT_SHOW", 1)
	r.IntMacro("EVT_HIDE", 2)

	out, err := r.Render()
	require.NoError(t, err)

	f := parseDecls(t, out)
	assert.Equal(t, "int32", typeUnderlying(f, "Event"))
	assert.Equal(t, []string{"Event_SHOW=1", "Event_HIDE=2", "Event_KEYDOWN=3"}, constValues(f, "Event"))
	assert.Contains(t, string(out), "func EventFromInt(n int64) (Event, bool)")
	assert.Contains(t, string(out), "func (v Event) String() string")
	assert.Contains(t, string(out), "case 1, 2, 3:")
	assert.Contains(t, string(out), "// EventFromInt converts a native integer to Event.")
	typeCheck(t, out)
}

func TestRender_DigitLeadingVariant(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)

	r.IntMacro("ICON_7DAYS", 7)

	out, err := r.Render()
	require.NoError(t, err)

	f := parseDecls(t, out)
	assert.Equal(t, []string{"Icon_ICON7DAYS=7"}, constValues(f, "Icon"))
}

func TestRender_EmptyGroupsOmitted(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)

	out, err := r.Render()
	require.NoError(t, err)
	assert.Empty(t, out)

	r.IntMacro("MAXMSGSIZE", 4096)
	r.IntMacro("DEF_BUTTON1", 0)

	out, err = r.Render()
	require.NoError(t, err)
	f := parseDecls(t, out)
	assert.Equal(t, "int32", typeUnderlying(f, "Button"))
	for _, name := range []string{"Event", "Key", "Request", "Icon", "Dither"} {
		assert.Empty(t, typeUnderlying(f, name), "%s should not be emitted", name)
	}
	assert.NotContains(t, string(out), "MAXMSGSIZE")
}

func TestRender_AscendingOrderRegardlessOfDiscovery(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)

	r.IntMacro("REQ_Z", 100)
	r.IntMacro("REQ_NEG", -1)
	r.IntMacro("REQ_MID", 50)

	out, err := r.Render()
	require.NoError(t, err)

	f := parseDecls(t, out)
	assert.Equal(t, []string{"Request_NEG=-1", "Request_MID=50", "Request_Z=100"}, constValues(f, "Request"))
}

func TestRender_WidthRepresentation(t *testing.T) {
	r, err := NewRegistry([]GroupSpec{
		{Prefix: "A_", Name: "Alpha", Width: types.U32},
		{Prefix: "B_", Name: "Beta", Width: types.I16},
		{Prefix: "C_", Name: "Gamma", Width: types.I32},
	})
	require.NoError(t, err)

	r.IntMacro("A_X", 1)
	r.IntMacro("B_X", 1)
	r.IntMacro("C_X", 1)

	out, err := r.Render()
	require.NoError(t, err)

	f := parseDecls(t, out)
	assert.Equal(t, "uint32", typeUnderlying(f, "Alpha"))
	assert.Equal(t, "int", typeUnderlying(f, "Beta"))
	assert.Equal(t, "int32", typeUnderlying(f, "Gamma"))
}

func TestRender_GroupsInPrefixOrder(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)

	r.IntMacro("REQ_A", 1)
	r.IntMacro("DEF_A", 1)
	r.IntMacro("EVT_A", 1)

	out, err := r.Render()
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, "type Button"), strings.Index(s, "type Event"))
	assert.Less(t, strings.Index(s, "type Event"), strings.Index(s, "type Request"))
}

func TestRender_TypeChecksAtEveryWidth(t *testing.T) {
	r, err := NewRegistry([]GroupSpec{
		{Prefix: "A_", Name: "Alpha", Width: types.U32},
		{Prefix: "B_", Name: "Beta", Width: types.I16},
		{Prefix: "C_", Name: "Gamma", Width: types.I32},
		{Prefix: "D_", Name: "Delta"},
	})
	require.NoError(t, err)

	r.IntMacro("A_TOP", 0xFFFFFFFF)
	r.IntMacro("A_ZERO", 0)
	r.IntMacro("B_NEG", -32768)
	r.IntMacro("C_MIN", -2147483648)
	r.IntMacro("C_MAX", 2147483647)
	r.IntMacro("D_HUGE", 1<<40)
	r.IntMacro("D_NEG", -(1 << 40))

	out, err := r.Render()
	require.NoError(t, err)
	typeCheck(t, out)
}

func TestRender_ValueOverflowNamesMacro(t *testing.T) {
	tests := []struct {
		name  string
		spec  GroupSpec
		macro string
		value int64
	}{
		{"i32 above range", GroupSpec{Prefix: "EVT_", Name: "Event", Width: types.I32}, "EVT_X", 0x80000000},
		{"i32 below range", GroupSpec{Prefix: "EVT_", Name: "Event", Width: types.I32}, "EVT_LOW", -0x80000001},
		{"u32 negative", GroupSpec{Prefix: "REQ_", Name: "Request", Width: types.U32}, "REQ_NEG", -1},
		{"i16 above range", GroupSpec{Prefix: "DEF_", Name: "Button", Width: types.I16}, "DEF_BIG", 40000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry([]GroupSpec{tt.spec})
			require.NoError(t, err)
			r.IntMacro(tt.macro, tt.value)

			out, err := r.Render()
			assert.ErrorIs(t, err, ErrValueOverflow)
			assert.Contains(t, err.Error(), tt.macro)
			assert.Contains(t, err.Error(), tt.spec.Name)
			assert.Nil(t, out)
		})
	}
}

func TestRender_DigitLeadingOverflowNamesSourceMacro(t *testing.T) {
	r, err := NewRegistry(DefaultGroups())
	require.NoError(t, err)
	r.IntMacro("ICON_7DAYS", 1<<33)

	_, err = r.Render()
	require.ErrorIs(t, err, ErrValueOverflow)
	assert.Contains(t, err.Error(), "ICON_7DAYS")
}
