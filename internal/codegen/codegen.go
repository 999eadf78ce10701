// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package codegen renders parsed header bindings as a Go source file that
// reaches the native library through cgo.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var fileTemplate = template.Must(template.ParseFS(templateFS, "templates/bindings.tmpl"))

// Hooks lets the caller rename declarations and enum variants. Both
// methods receive original header names and return false for no opinion.
type Hooks interface {
	ItemName(original string) (string, bool)
	EnumVariantName(enumName, variant string, value int64) (string, bool)
}

// Options configures the rendered file.
type Options struct {
	Package        string
	Link           string   // Native library to link, without the lib prefix
	HeaderContents string   // Synthetic header placed in the cgo preamble
	BitfieldEnums  []string // Go names of enums that get a Has method
	Revision       string   // SDK revision stamped in the file header
}

// Input is everything Render needs. Decisions holds the classification
// outcome for each integer macro; owned macros are not emitted.
type Input struct {
	Bindings  *types.Bindings
	Decisions map[string]types.MacroDecision
	Hooks     Hooks
}

type constData struct {
	Name  string
	Type  string
	Value string
}

type memberData struct {
	Name  string
	Value int64
}

type enumData struct {
	Name     string
	CName    string
	Repr     string
	Bitfield bool
	Members  []memberData
}

type aliasData struct {
	Name string
	CRef string
}

type paramData struct {
	Name string
	Type string
}

type funcData struct {
	Name   string
	CName  string
	Doc    string
	Params []paramData
	Args   []string
	Result string
	ToGo   string
}

type fileData struct {
	Package     string
	Revision    string
	Preamble    []string
	NeedsUnsafe bool
	IntConsts   []constData
	StrConsts   []constData
	Enums       []enumData
	Aliases     []aliasData
	Funcs       []funcData
}

// Render produces the binding source. The output is a complete Go file but
// is not gofmt-formatted. When two declarations map to the same Go name the
// first one is kept.
func Render(in Input, opts Options) ([]byte, error) {
	if in.Bindings == nil {
		return nil, fmt.Errorf("no bindings to render")
	}
	if opts.Package == "" {
		return nil, fmt.Errorf("package name is required")
	}
	hooks := in.Hooks
	if hooks == nil {
		hooks = noHooks{}
	}

	seen := make(map[string]bool)
	declare := func(name string) bool {
		if seen[name] {
			return false
		}
		seen[name] = true
		return true
	}

	data := fileData{
		Package:  opts.Package,
		Revision: opts.Revision,
		Preamble: preamble(opts),
	}
	b := in.Bindings

	for _, m := range b.IntMacros {
		d := in.Decisions[m.Name]
		if !m.Exposed || d.Owned() {
			continue
		}
		c := constData{Name: exportName(m.Name), Value: strconv.FormatInt(m.Value, 10)}
		if !declare(c.Name) {
			continue
		}
		if d.Kind.Fits(m.Value) {
			c.Type = d.Kind.GoType()
		}
		data.IntConsts = append(data.IntConsts, c)
	}
	for _, m := range b.StringMacros {
		c := constData{Name: exportName(m.Name), Value: strconv.Quote(m.Value)}
		if declare(c.Name) {
			data.StrConsts = append(data.StrConsts, c)
		}
	}

	bitfields := make(map[string]bool, len(opts.BitfieldEnums))
	for _, n := range opts.BitfieldEnums {
		bitfields[n] = true
	}
	enumNames := make(map[string]string, len(b.Enums))
	for _, e := range b.Enums {
		ed := renderEnum(e, hooks)
		if !declare(ed.Name) {
			continue
		}
		ed.Bitfield = bitfields[ed.Name]
		if e.Name != "" {
			enumNames[e.Name] = ed.Name
		}
		data.Enums = append(data.Enums, ed)
	}

	for _, r := range b.Records {
		cname := r.Name
		if cname == "" {
			kind := "struct"
			if r.IsUnion {
				kind = "union"
			}
			cname = kind + "_" + r.Tag
		}
		a := aliasData{Name: goTypeName(hooks, firstNonEmpty(r.Name, r.Tag)), CRef: cname}
		if declare(a.Name) {
			data.Aliases = append(data.Aliases, a)
		}
	}
	for _, td := range b.Typedefs {
		a := aliasData{Name: goTypeName(hooks, td.Name), CRef: td.Name}
		if declare(a.Name) {
			data.Aliases = append(data.Aliases, a)
		}
	}

	for _, fn := range b.Functions {
		fd := renderFunc(fn, enumNames)
		if !declare(fd.Name) {
			continue
		}
		if strings.Contains(fd.Result, "unsafe.") {
			data.NeedsUnsafe = true
		}
		for _, p := range fd.Params {
			if strings.Contains(p.Type, "unsafe.") {
				data.NeedsUnsafe = true
			}
		}
		data.Funcs = append(data.Funcs, fd)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering bindings: %w", err)
	}
	return buf.Bytes(), nil
}

// preamble builds the cgo comment lines: the link directive followed by the
// synthetic header.
func preamble(opts Options) []string {
	var lines []string
	if opts.Link != "" {
		lines = append(lines, "#cgo LDFLAGS: -l"+opts.Link)
	}
	for _, line := range strings.Split(strings.TrimRight(opts.HeaderContents, "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// renderEnum names a native enum and its variants through the hooks. The
// hooks always see the header names.
func renderEnum(e types.EnumDecl, hooks Hooks) enumData {
	cname := e.Name
	if cname == "" {
		cname = "enum " + e.Tag
	}
	ed := enumData{
		Name:  goTypeName(hooks, firstNonEmpty(e.Name, e.Tag)),
		CName: cname,
		Repr:  "uint32",
	}
	for _, en := range e.Enumerators {
		if en.Value < 0 {
			ed.Repr = "int32"
		}
		name := en.Name
		if renamed, ok := hooks.EnumVariantName(e.Name, en.Name, en.Value); ok {
			name = renamed
		}
		ed.Members = append(ed.Members, memberData{Name: name, Value: en.Value})
	}
	return ed
}

func renderFunc(fn types.Function, enums map[string]string) funcData {
	fd := funcData{
		Name:  exportName(fn.Name),
		CName: fn.Name,
		Doc:   fn.Doc,
	}
	for i, p := range fn.Params {
		v := mapType(p.Type, enums)
		name := paramName(p.Name, i)
		fd.Params = append(fd.Params, paramData{Name: name, Type: v.Type})
		fd.Args = append(fd.Args, fmt.Sprintf(v.ToC, name))
	}
	if !fn.Result.IsVoid() {
		v := mapType(fn.Result, enums)
		fd.Result = v.Type
		fd.ToGo = v.ToGo
	}
	return fd
}

// Call returns the wrapper body expression for f.
func (f funcData) Call() string {
	call := "C." + f.CName + "(" + strings.Join(f.Args, ", ") + ")"
	if f.Result == "" {
		return call
	}
	return fmt.Sprintf(f.ToGo, call)
}

func goTypeName(hooks Hooks, original string) string {
	if renamed, ok := hooks.ItemName(original); ok {
		return renamed
	}
	return exportName(original)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

type noHooks struct{}

func (noHooks) ItemName(string) (string, bool)                       { return "", false }
func (noHooks) EnumVariantName(string, string, int64) (string, bool) { return "", false }
