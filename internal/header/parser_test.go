// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package header

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inkview-bindgen/internal/rules"
	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

const testHeader = `#ifndef INKVIEW_H
#define INKVIEW_H

#define EVT_INIT 21
#define EVT_SHOW 23
#define EVT_HIDE (EVT_SHOW + 1)
#define MAXMSGSIZE 4096
#define ICON_7DAYS 7
#define BLACK 0x000000
#define WHITE 0xffffff // white
#define A2DITHER (1 << 2)
#define HALF 0.5
#define IS_EVENT(x) ((x) > 0)
#define ENODATA 61

#define USERDATA "/mnt/ext1/system"
#define USERFONTDIR USERDATA "/fonts"

#ifdef PLATFORM_A
#define SYSTEMDEPTH 8
#else
#define SYSTEMDEPTH 4
#endif

typedef struct irect_s {
	int x;
	int y;
	int w;
	int h;
	int flags;
} irect;

typedef struct ibitmap_s ibitmap;

typedef void (*iv_handler)(int type, int par1, int par2);

typedef enum PANEL_FLAGS_E {
	PANEL_DISABLED = 0,
	PANEL_ENABLED = 1 << 1,
	PANEL_EVENT_NO_HANDLING = 1 << 2,
} PANEL_FLAGS;

typedef enum {
	NET_OK,
	NET_FAIL = 5,
	NET_NEXT
} NET_STATE;

/* Opens the screen. */
void OpenScreen(void);
int ScreenWidth(void);
ibitmap *LoadBitmap(const char *filename);
void SetEventHandler(iv_handler hproc);
void SetStringf(const char *fmt, ...);
void SetTimer(void (*proc)(void));
void FillArea(int x, int y, int w, int h, int color);
void malloc_like(int n);

#endif
`

func parseTest(t *testing.T) (*types.Bindings, Stats) {
	t.Helper()
	r, err := rules.Parse([]byte(`
allowlist:
  vars: ["MAXMSGSIZE", "BLACK", "WHITE", "A2DITHER", "HALF", "USER[A-Z]+", "SYSTEMDEPTH", "ENODATA"]
  types: ["irect", "ibitmap", "iv_[0-9a-z_]+", "PANEL_FLAGS", "NET_STATE"]
  functions: ["OpenScreen", "ScreenWidth", "LoadBitmap", "Set[A-Z][A-Za-z]*", "FillArea"]
blocklist:
  items: ["ENODATA"]
`))
	require.NoError(t, err)

	b, stats, err := NewParser(r, nil).ParseText(context.Background(), []byte(testHeader))
	require.NoError(t, err)
	return b, stats
}

func macroNames(ms []types.IntMacro) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Name)
	}
	return out
}

func findMacro(t *testing.T, ms []types.IntMacro, name string) types.IntMacro {
	t.Helper()
	for _, m := range ms {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("macro %s not found", name)
	return types.IntMacro{}
}

func TestParseText_IntMacrosInDiscoveryOrder(t *testing.T) {
	b, _ := parseTest(t)

	assert.Equal(t, []string{
		"EVT_INIT", "EVT_SHOW", "EVT_HIDE", "MAXMSGSIZE", "ICON_7DAYS",
		"BLACK", "WHITE", "A2DITHER", "SYSTEMDEPTH",
	}, macroNames(b.IntMacros))
}

func TestParseText_MacroValues(t *testing.T) {
	b, _ := parseTest(t)

	assert.Equal(t, int64(24), findMacro(t, b.IntMacros, "EVT_HIDE").Value)
	assert.Equal(t, int64(0xffffff), findMacro(t, b.IntMacros, "WHITE").Value)
	assert.Equal(t, int64(4), findMacro(t, b.IntMacros, "A2DITHER").Value)
	assert.Equal(t, int64(8), findMacro(t, b.IntMacros, "SYSTEMDEPTH").Value, "first definition wins")
}

func TestParseText_ExposedFollowsRules(t *testing.T) {
	b, _ := parseTest(t)

	assert.False(t, findMacro(t, b.IntMacros, "EVT_SHOW").Exposed)
	assert.True(t, findMacro(t, b.IntMacros, "MAXMSGSIZE").Exposed)
	assert.NotContains(t, macroNames(b.IntMacros), "ENODATA", "blocklisted macros are dropped")
}

func TestParseText_StringMacros(t *testing.T) {
	b, _ := parseTest(t)

	require.Len(t, b.StringMacros, 2)
	assert.Equal(t, types.StringMacro{Name: "USERDATA", Value: "/mnt/ext1/system", Line: 16}, b.StringMacros[0])
	assert.Equal(t, "USERFONTDIR", b.StringMacros[1].Name)
	assert.Equal(t, "/mnt/ext1/system/fonts", b.StringMacros[1].Value)
}

func TestParseText_Stats(t *testing.T) {
	_, stats := parseTest(t)

	assert.Equal(t, 1, stats.SkippedMacros, "HALF is not an integer")
	assert.Equal(t, 1, stats.Redefinitions)
	assert.Equal(t, 2, stats.SkippedFuncs, "variadic and function-pointer parameter")
}

func TestParseText_Functions(t *testing.T) {
	b, _ := parseTest(t)

	byName := make(map[string]types.Function)
	for _, fn := range b.Functions {
		byName[fn.Name] = fn
	}
	assert.Len(t, b.Functions, 5)
	assert.NotContains(t, byName, "SetStringf")
	assert.NotContains(t, byName, "SetTimer")
	assert.NotContains(t, byName, "malloc_like")

	open := byName["OpenScreen"]
	assert.Empty(t, open.Params)
	assert.True(t, open.Result.IsVoid())
	assert.Equal(t, "Opens the screen.", open.Doc)

	load := byName["LoadBitmap"]
	assert.Equal(t, types.CType{Base: "ibitmap", Pointers: 1}, load.Result)
	require.Len(t, load.Params, 1)
	assert.Equal(t, types.Param{Name: "filename", Type: types.CType{Base: "char", Pointers: 1, Const: true}}, load.Params[0])

	handler := byName["SetEventHandler"]
	require.Len(t, handler.Params, 1)
	assert.Equal(t, "iv_handler", handler.Params[0].Type.Base)

	fill := byName["FillArea"]
	assert.Len(t, fill.Params, 5)
	assert.Equal(t, "color", fill.Params[4].Name)
}

func TestParseText_Enums(t *testing.T) {
	b, _ := parseTest(t)

	require.Len(t, b.Enums, 2)
	panel := b.Enums[0]
	assert.Equal(t, "PANEL_FLAGS", panel.Name)
	assert.Equal(t, "PANEL_FLAGS_E", panel.Tag)
	assert.Equal(t, []types.Enumerator{
		{Name: "PANEL_DISABLED", Value: 0},
		{Name: "PANEL_ENABLED", Value: 2},
		{Name: "PANEL_EVENT_NO_HANDLING", Value: 4},
	}, panel.Enumerators)

	net := b.Enums[1]
	assert.Equal(t, "NET_STATE", net.Name)
	assert.Equal(t, []types.Enumerator{
		{Name: "NET_OK", Value: 0},
		{Name: "NET_FAIL", Value: 5},
		{Name: "NET_NEXT", Value: 6},
	}, net.Enumerators)
}

func TestParseText_RecordsAndTypedefs(t *testing.T) {
	b, _ := parseTest(t)

	require.Len(t, b.Records, 2)
	assert.Equal(t, "irect", b.Records[0].Name)
	assert.Equal(t, "irect_s", b.Records[0].Tag)
	assert.Equal(t, "ibitmap", b.Records[1].Name)

	require.Len(t, b.Typedefs, 1)
	assert.Equal(t, "iv_handler", b.Typedefs[0].Name)
	assert.Equal(t, "func", b.Typedefs[0].Target.Base)
}

func TestParseText_NilRulesSelectsEverything(t *testing.T) {
	b, _, err := NewParser(nil, nil).ParseText(context.Background(), []byte("#define X 1\nvoid f(int a);\n"))
	require.NoError(t, err)

	require.Len(t, b.IntMacros, 1)
	assert.True(t, b.IntMacros[0].Exposed)
	require.Len(t, b.Functions, 1)
	assert.Equal(t, "f", b.Functions[0].Name)
}

func TestParseText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewParser(nil, nil).ParseText(ctx, []byte("#define X 1\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseText_GNUConditional(t *testing.T) {
	src := "#define EVT_A (1 ?: 2)\n#define EVT_B (0 ?: EVT_A)\n"
	var b *types.Bindings
	require.NotPanics(t, func() {
		var err error
		b, _, err = NewParser(nil, nil).ParseText(context.Background(), []byte(src))
		require.NoError(t, err)
	})
	assert.Equal(t, int64(1), findMacro(t, b.IntMacros, "EVT_A").Value)
	assert.Equal(t, int64(1), findMacro(t, b.IntMacros, "EVT_B").Value)
}

func TestParseText_UnsignedMacros(t *testing.T) {
	src := `#define ALL_BITS (~0u)
#define NO_HANDLE ((unsigned int)-1)
#define WRAPPED (ALL_BITS + 1)
#define LOW_BYTE ((unsigned char)0x1FF)
`
	b, _, err := NewParser(nil, nil).ParseText(context.Background(), []byte(src))
	require.NoError(t, err)

	assert.Equal(t, int64(4294967295), findMacro(t, b.IntMacros, "ALL_BITS").Value)
	assert.Equal(t, int64(4294967295), findMacro(t, b.IntMacros, "NO_HANDLE").Value)
	assert.Equal(t, int64(0), findMacro(t, b.IntMacros, "WRAPPED").Value, "unsigned macros keep their type in later bodies")
	assert.Equal(t, int64(0xFF), findMacro(t, b.IntMacros, "LOW_BYTE").Value)
}
