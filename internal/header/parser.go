// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package header parses the device-SDK header into structured bindings:
// macro constants, function prototypes, enums, records, and typedefs. It
// resolves includes, decodes the header charset, and parses C with
// tree-sitter. Symbol selection is applied while collecting, except for
// integer macros: every one is reported, in discovery order, so enum
// synthesis can see macros that are not exposed on their own.
package header

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/petar-djukic/inkview-bindgen/internal/rules"
	"github.com/petar-djukic/inkview-bindgen/pkg/types"
)

// ErrParse is returned when the header cannot be parsed at all.
var ErrParse = errors.New("header parse failed")

// Stats summarizes a parse.
type Stats struct {
	Files          int // Included files inlined
	Unresolved     int // Include targets not found
	IntMacros      int
	StringMacros   int
	Functions      int
	Enums          int
	Records        int
	Typedefs       int
	SkippedMacros  int // Macro bodies that are not constants
	SkippedFuncs   int // Selected functions that cannot be bound
	Redefinitions  int // Later definitions of an already-seen macro
}

// Parser turns a Source into Bindings.
type Parser struct {
	rules *rules.Rules
	log   logrus.FieldLogger
}

// NewParser returns a parser that selects symbols with r.
func NewParser(r *rules.Rules, log logrus.FieldLogger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{rules: r, log: log}
}

// Parse loads src, inlines its includes, and collects bindings.
func (p *Parser) Parse(ctx context.Context, src Source) (*types.Bindings, Stats, error) {
	merged, err := Load(src, p.log)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	b, stats, err := p.ParseText(ctx, merged.Text)
	if err != nil {
		return nil, stats, err
	}
	stats.Files = len(merged.Files)
	stats.Unresolved = len(merged.Unresolved)
	return b, stats, nil
}

// ParseText collects bindings from already-merged header text.
func (p *Parser) ParseText(ctx context.Context, text []byte) (*types.Bindings, Stats, error) {
	root, err := sitter.ParseCtx(ctx, text, c.GetLanguage())
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if root == nil {
		return nil, Stats{}, fmt.Errorf("%w: empty syntax tree", ErrParse)
	}

	w := &walker{
		ctx:      ctx,
		src:      text,
		rules:    p.rules,
		log:      p.log,
		scope:    newScope(),
		seen:     make(map[string]bool),
		seenType: make(map[string]bool),
		b:        &types.Bindings{},
	}
	if err := w.walk(root); err != nil {
		return nil, w.stats, fmt.Errorf("%w: %v", ErrParse, err)
	}

	w.stats.IntMacros = len(w.b.IntMacros)
	w.stats.StringMacros = len(w.b.StringMacros)
	w.stats.Functions = len(w.b.Functions)
	w.stats.Enums = len(w.b.Enums)
	w.stats.Records = len(w.b.Records)
	w.stats.Typedefs = len(w.b.Typedefs)
	return w.b, w.stats, nil
}

// walker carries state through one traversal.
type walker struct {
	ctx      context.Context
	src      []byte
	rules    *rules.Rules
	log      logrus.FieldLogger
	scope    *scope
	seen     map[string]bool // macro names already defined
	seenType map[string]bool // type names already collected
	b        *types.Bindings
	stats    Stats
}

// walk visits top-level items, descending into preprocessor conditionals,
// linkage blocks, and error-recovery nodes.
func (w *walker) walk(n *sitter.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	switch n.Type() {
	case "preproc_def":
		w.macro(n)
		return nil
	case "declaration":
		w.declaration(n)
		return nil
	case "type_definition":
		w.typeDefinition(n)
		return nil
	case "enum_specifier", "struct_specifier", "union_specifier":
		w.specifier(n, "")
		return nil
	case "function_definition", "preproc_function_def", "preproc_include", "preproc_call", "comment":
		return nil
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := w.walk(n.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

// macro collects an object-like macro whose body is an integer or string
// constant. The first definition of a name wins.
func (w *walker) macro(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(w.src)
	if w.seen[name] {
		w.stats.Redefinitions++
		return
	}
	if w.rules != nil && w.rules.Blocked(name) {
		return
	}
	valueNode := n.ChildByFieldName("value")
	if valueNode == nil {
		return
	}
	body := stripComments(valueNode.Content(w.src))
	line := int(n.StartPoint().Row) + 1

	if x, err := evalMacro(w.ctx, body, w.scope); err == nil {
		w.seen[name] = true
		w.scope.define(name, x)
		w.b.IntMacros = append(w.b.IntMacros, types.IntMacro{
			Name:    name,
			Value:   x.v,
			Line:    line,
			Exposed: w.allowed(types.Var, name),
		})
		return
	}
	if s, err := evalString(body, w.scope); err == nil {
		w.seen[name] = true
		w.scope.strings[name] = s
		if w.allowed(types.Var, name) {
			w.b.StringMacros = append(w.b.StringMacros, types.StringMacro{Name: name, Value: s, Line: line})
		}
		return
	}
	w.stats.SkippedMacros++
}

func (w *walker) allowed(kind types.SymbolKind, name string) bool {
	return w.rules == nil || w.rules.Allowed(kind, name)
}

// declaration handles function prototypes and bare tagged specifiers such
// as "struct foo { ... };".
func (w *walker) declaration(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	w.specifier(typeNode, "")

	base := w.baseType(n, typeNode)
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := readDeclarator(n.Child(i), w.src)
		if d.params == nil || d.funcPtr {
			continue
		}
		w.function(n, base, d)
	}
}

func (w *walker) function(decl *sitter.Node, base types.CType, d declInfo) {
	if d.name == "" || !w.allowed(types.Func, d.name) {
		return
	}
	fn := types.Function{
		Name:   d.name,
		Result: base,
		Doc:    w.doc(decl),
		Line:   int(decl.StartPoint().Row) + 1,
	}
	fn.Result.Pointers += d.pointers

	ok := true
	for i := 0; i < int(d.params.NamedChildCount()); i++ {
		pn := d.params.NamedChild(i)
		switch pn.Type() {
		case "variadic_parameter":
			fn.Variadic = true
		case "parameter_declaration":
			pt := pn.ChildByFieldName("type")
			if pt == nil {
				ok = false
				continue
			}
			ptype := w.baseType(pn, pt)
			pd := readDeclarator(pn.ChildByFieldName("declarator"), w.src)
			if pd.funcPtr || pd.params != nil {
				ok = false
				continue
			}
			ptype.Pointers += pd.pointers
			if pd.array != "" || pd.isArray {
				ptype.Pointers++
			}
			if ptype.IsVoid() && pd.name == "" {
				continue // f(void)
			}
			fn.Params = append(fn.Params, types.Param{Name: pd.name, Type: ptype})
		case "comment":
		default:
			ok = false
		}
	}
	if !ok || fn.Variadic {
		w.stats.SkippedFuncs++
		w.log.WithField("function", fn.Name).Debug("skipping function with unsupported signature")
		return
	}
	w.b.Functions = append(w.b.Functions, fn)
}

// typeDefinition handles typedefs of enums, records, and other types.
func (w *walker) typeDefinition(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	base := w.baseType(n, typeNode)
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := readDeclarator(n.Child(i), w.src)
		if d.name == "" {
			continue
		}
		plain := d.pointers == 0 && d.params == nil && !d.funcPtr && d.array == "" && !d.isArray
		if plain && definesBody(typeNode) {
			w.specifier(typeNode, d.name)
			continue
		}
		w.specifier(typeNode, "")
		w.typedef(n, d, base)
	}
}

// definesBody reports whether a typedef's type is a record or enum that the
// typedef name should stand for. Bodiless enums are plain aliases; bodiless
// records are opaque but still named.
func definesBody(typeNode *sitter.Node) bool {
	switch typeNode.Type() {
	case "struct_specifier", "union_specifier":
		return true
	case "enum_specifier":
		return typeNode.ChildByFieldName("body") != nil
	}
	return false
}

func (w *walker) typedef(n *sitter.Node, d declInfo, base types.CType) {
	if w.seenType[d.name] || !w.allowed(types.Type, d.name) {
		return
	}
	w.seenType[d.name] = true
	target := base
	target.Pointers += d.pointers
	if d.funcPtr || d.params != nil {
		target = types.CType{Base: "func"}
	}
	w.b.Typedefs = append(w.b.Typedefs, types.TypedefDecl{
		Name:   d.name,
		Target: target,
		Line:   int(n.StartPoint().Row) + 1,
	})
}

// specifier collects an enum or record. typedefName is the name given by an
// enclosing typedef, empty for a bare tagged declaration.
func (w *walker) specifier(n *sitter.Node, typedefName string) {
	kind := n.Type()
	if kind != "enum_specifier" && kind != "struct_specifier" && kind != "union_specifier" {
		return
	}
	tag := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		tag = nameNode.Content(w.src)
	}
	body := n.ChildByFieldName("body")

	if kind == "enum_specifier" {
		if body == nil {
			return
		}
		w.enum(n, body, tag, typedefName)
		return
	}

	if body == nil && typedefName == "" {
		return
	}
	name := typedefName
	if name == "" {
		name = tag
	}
	if name == "" || w.seenType[name] || !w.allowed(types.Type, name) {
		return
	}
	w.seenType[name] = true
	w.b.Records = append(w.b.Records, types.RecordDecl{
		Name:    typedefName,
		Tag:     tag,
		IsUnion: kind == "union_specifier",
		Doc:     w.doc(n),
		Line:    int(n.StartPoint().Row) + 1,
	})
}

// enum evaluates enumerators in order. Values default to one more than the
// previous, starting at zero, and may refer to earlier enumerators and
// integer macros.
func (w *walker) enum(n, body *sitter.Node, tag, typedefName string) {
	name := typedefName
	if name == "" {
		name = tag
	}

	decl := types.EnumDecl{
		Name: name,
		Tag:  tag,
		Doc:  w.doc(n),
		Line: int(n.StartPoint().Row) + 1,
	}
	next := int64(0)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			continue
		}
		en := e.ChildByFieldName("name")
		if en == nil {
			continue
		}
		val := next
		if vn := e.ChildByFieldName("value"); vn != nil {
			x, err := evalNode(vn, w.src, w.scope)
			if err != nil {
				w.log.WithField("enumerator", en.Content(w.src)).Debug("enumerator value is not constant")
				return
			}
			val = x.v
		}
		ename := en.Content(w.src)
		w.scope.define(ename, inferred(val))
		decl.Enumerators = append(decl.Enumerators, types.Enumerator{Name: ename, Value: val})
		next = val + 1
	}

	if name == "" || w.seenType[name] || !w.allowed(types.Type, name) {
		return
	}
	w.seenType[name] = true
	w.b.Enums = append(w.b.Enums, decl)
}

// baseType reads the type specifier of a declaration-like node, including
// const qualifiers written beside it.
func (w *walker) baseType(owner, typeNode *sitter.Node) types.CType {
	t := types.CType{}
	switch typeNode.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		t.Tag = strings.TrimSuffix(typeNode.Type(), "_specifier")
		if nameNode := typeNode.ChildByFieldName("name"); nameNode != nil {
			t.Base = nameNode.Content(w.src)
		}
	default:
		t.Base = strings.Join(strings.Fields(typeNode.Content(w.src)), " ")
	}
	for i := 0; i < int(owner.NamedChildCount()); i++ {
		ch := owner.NamedChild(i)
		if ch.Type() == "type_qualifier" && ch.Content(w.src) == "const" {
			t.Const = true
		}
	}
	return t
}

// doc returns the comment immediately preceding n, if any.
func (w *walker) doc(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if prev.EndPoint().Row+1 < n.StartPoint().Row {
		return ""
	}
	return cleanComment(prev.Content(w.src))
}

// cleanComment strips comment markers and surrounding whitespace.
func cleanComment(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "//") {
		return strings.TrimSpace(strings.TrimLeft(s, "/"))
	}
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
