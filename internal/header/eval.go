// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package header

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// errNotConstant marks a macro body that is not an integer constant
// expression.
var errNotConstant = errors.New("not a constant expression")

// cval is an evaluated integer constant with its C type. v always holds the
// value already truncated to bits: sign-extended when signed, zero-extended
// when unsigned. A 64-bit unsigned value keeps its bit pattern in v.
type cval struct {
	v        int64
	bits     uint
	unsigned bool
}

// cint is a value of C type int.
func cint(v int64) cval { return cval{v: v, bits: 32} }

// cbool is the int 1 or 0 produced by comparisons and logical operators.
func cbool(b bool) cval {
	if b {
		return cint(1)
	}
	return cint(0)
}

// inferred types a bare value as int when it fits and long long otherwise,
// the way an enumerator or an untyped macro value would be.
func inferred(v int64) cval {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return cint(v)
	}
	return cval{v: v, bits: 64}
}

// conv converts x to an integer type of the given width and signedness.
func (x cval) conv(bits uint, unsigned bool) cval {
	v := x.v
	switch bits {
	case 8:
		if unsigned {
			v = int64(uint8(v))
		} else {
			v = int64(int8(v))
		}
	case 16:
		if unsigned {
			v = int64(uint16(v))
		} else {
			v = int64(int16(v))
		}
	case 32:
		if unsigned {
			v = int64(uint32(v))
		} else {
			v = int64(int32(v))
		}
	}
	return cval{v: v, bits: bits, unsigned: unsigned}
}

// promote applies the integer promotions.
func (x cval) promote() cval {
	if x.bits < 32 {
		return x.conv(32, false)
	}
	return x
}

// common returns the type both operands of an arithmetic operator convert to.
func common(a, b cval) (bits uint, unsigned bool) {
	a, b = a.promote(), b.promote()
	switch {
	case a.bits == b.bits:
		return a.bits, a.unsigned || b.unsigned
	case a.bits > b.bits:
		return a.bits, a.unsigned
	default:
		return b.bits, b.unsigned
	}
}

// scope holds the macro values visible to later macro bodies. ints carries
// the value of every integer macro and enumerator; typed carries the C type
// of those whose type is known.
type scope struct {
	ints    map[string]int64
	typed   map[string]cval
	strings map[string]string
}

func newScope() *scope {
	return &scope{
		ints:    make(map[string]int64),
		typed:   make(map[string]cval),
		strings: make(map[string]string),
	}
}

func (sc *scope) define(name string, x cval) {
	sc.ints[name] = x.v
	sc.typed[name] = x
}

func (sc *scope) lookup(name string) (cval, bool) {
	if x, ok := sc.typed[name]; ok {
		return x, true
	}
	v, ok := sc.ints[name]
	if !ok {
		return cval{}, false
	}
	return inferred(v), true
}

// evalPrefix wraps a macro body so tree-sitter parses it as an initializer.
const evalPrefix = "long long bindgen_value__ = ("

// evalInt parses text as a C expression and evaluates it over the integer
// macros in sc.
func evalInt(ctx context.Context, text string, sc *scope) (int64, error) {
	x, err := evalMacro(ctx, text, sc)
	return x.v, err
}

// evalMacro is evalInt keeping the C type of the result.
func evalMacro(ctx context.Context, text string, sc *scope) (cval, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return cval{}, errNotConstant
	}
	src := []byte(evalPrefix + text + ");\n")
	root, err := sitter.ParseCtx(ctx, src, c.GetLanguage())
	if err != nil {
		return cval{}, err
	}
	if root == nil || root.HasError() {
		return cval{}, errNotConstant
	}
	decl := root.NamedChild(0)
	if decl == nil || decl.Type() != "declaration" {
		return cval{}, errNotConstant
	}
	init := decl.ChildByFieldName("declarator")
	if init == nil || init.Type() != "init_declarator" {
		return cval{}, errNotConstant
	}
	return evalNode(init.ChildByFieldName("value"), src, sc)
}

// evalNode evaluates a tree-sitter C expression node.
func evalNode(n *sitter.Node, src []byte, sc *scope) (cval, error) {
	if n == nil {
		return cval{}, errNotConstant
	}
	switch n.Type() {
	case "number_literal":
		return parseIntLiteral(n.Content(src))

	case "char_literal":
		return parseCharLiteral(n.Content(src))

	case "true":
		return cint(1), nil
	case "false":
		return cint(0), nil

	case "identifier":
		if x, ok := sc.lookup(n.Content(src)); ok {
			return x, nil
		}
		return cval{}, errNotConstant

	case "parenthesized_expression":
		if n.NamedChildCount() != 1 {
			return cval{}, errNotConstant
		}
		return evalNode(n.NamedChild(0), src, sc)

	case "cast_expression":
		typ := n.ChildByFieldName("type")
		if typ == nil || strings.Contains(typ.Content(src), "*") {
			return cval{}, errNotConstant
		}
		x, err := evalNode(n.ChildByFieldName("value"), src, sc)
		if err != nil {
			return cval{}, err
		}
		return castTo(typ.Content(src), x), nil

	case "unary_expression":
		op := n.ChildByFieldName("operator")
		if op == nil {
			return cval{}, errNotConstant
		}
		x, err := evalNode(n.ChildByFieldName("argument"), src, sc)
		if err != nil {
			return cval{}, err
		}
		return evalUnary(op.Type(), x)

	case "binary_expression":
		return evalBinary(n, src, sc)

	case "conditional_expression":
		cond, err := evalNode(n.ChildByFieldName("condition"), src, sc)
		if err != nil {
			return cval{}, err
		}
		// GNU "a ?: b" has no consequence and yields the condition.
		yes, yesErr := cond, error(nil)
		if cn := n.ChildByFieldName("consequence"); cn != nil {
			yes, yesErr = evalNode(cn, src, sc)
		}
		no, noErr := evalNode(n.ChildByFieldName("alternative"), src, sc)
		picked, pickedErr, other, otherErr := no, noErr, yes, yesErr
		if cond.v != 0 {
			picked, pickedErr, other, otherErr = yes, yesErr, no, noErr
		}
		if pickedErr != nil {
			return cval{}, pickedErr
		}
		if otherErr != nil {
			return picked, nil
		}
		return picked.conv(common(picked, other)), nil
	}
	return cval{}, errNotConstant
}

func evalUnary(op string, x cval) (cval, error) {
	switch op {
	case "-":
		x = x.promote()
		return cval{v: -x.v}.conv(x.bits, x.unsigned), nil
	case "+":
		return x.promote(), nil
	case "~":
		x = x.promote()
		return cval{v: ^x.v}.conv(x.bits, x.unsigned), nil
	case "!":
		return cbool(x.v == 0), nil
	}
	return cval{}, errNotConstant
}

func evalBinary(n *sitter.Node, src []byte, sc *scope) (cval, error) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return cval{}, errNotConstant
	}
	a, err := evalNode(n.ChildByFieldName("left"), src, sc)
	if err != nil {
		return cval{}, err
	}
	b, err := evalNode(n.ChildByFieldName("right"), src, sc)
	if err != nil {
		return cval{}, err
	}

	switch op.Type() {
	case "&&":
		return cbool(a.v != 0 && b.v != 0), nil
	case "||":
		return cbool(a.v != 0 || b.v != 0), nil
	case "<<", ">>":
		return evalShift(op.Type(), a.promote(), b)
	}

	bits, unsigned := common(a, b)
	a, b = a.conv(bits, unsigned), b.conv(bits, unsigned)
	wrap := func(v int64) (cval, error) {
		return cval{v: v}.conv(bits, unsigned), nil
	}
	switch op.Type() {
	case "+":
		return wrap(a.v + b.v)
	case "-":
		return wrap(a.v - b.v)
	case "*":
		return wrap(a.v * b.v)
	case "/", "%":
		if b.v == 0 {
			return cval{}, errNotConstant
		}
		if unsigned {
			if op.Type() == "/" {
				return wrap(int64(uint64(a.v) / uint64(b.v)))
			}
			return wrap(int64(uint64(a.v) % uint64(b.v)))
		}
		if a.v == math.MinInt64 && b.v == -1 {
			return cval{}, errNotConstant
		}
		if op.Type() == "/" {
			return wrap(a.v / b.v)
		}
		return wrap(a.v % b.v)
	case "&":
		return wrap(a.v & b.v)
	case "|":
		return wrap(a.v | b.v)
	case "^":
		return wrap(a.v ^ b.v)
	case "==":
		return cbool(a.v == b.v), nil
	case "!=":
		return cbool(a.v != b.v), nil
	case "<":
		return cbool(less(a.v, b.v, unsigned)), nil
	case "<=":
		return cbool(!less(b.v, a.v, unsigned)), nil
	case ">":
		return cbool(less(b.v, a.v, unsigned)), nil
	case ">=":
		return cbool(!less(a.v, b.v, unsigned)), nil
	}
	return cval{}, errNotConstant
}

// evalShift shifts a, already promoted, by b. The result has a's type.
func evalShift(op string, a, b cval) (cval, error) {
	if b.v < 0 || b.v >= int64(a.bits) {
		return cval{}, errNotConstant
	}
	s := uint(b.v)
	if op == "<<" {
		return cval{v: a.v << s}.conv(a.bits, a.unsigned), nil
	}
	if a.unsigned {
		return cval{v: int64(uint64(a.v) >> s)}.conv(a.bits, true), nil
	}
	return cval{v: a.v >> s}.conv(a.bits, false), nil
}

func less(a, b int64, unsigned bool) bool {
	if unsigned {
		return uint64(a) < uint64(b)
	}
	return a < b
}

// castTo converts x to the named C integer type. Type names the evaluator
// does not know, such as SDK typedefs, leave x unchanged.
func castTo(typeName string, x cval) cval {
	var words []string
	for _, w := range strings.Fields(typeName) {
		if w != "const" && w != "volatile" {
			words = append(words, w)
		}
	}
	if len(words) == 1 {
		switch words[0] {
		case "_Bool", "bool":
			return cbool(x.v != 0)
		case "int8_t":
			return x.conv(8, false)
		case "uint8_t":
			return x.conv(8, true)
		case "int16_t":
			return x.conv(16, false)
		case "uint16_t":
			return x.conv(16, true)
		case "int32_t":
			return x.conv(32, false)
		case "uint32_t":
			return x.conv(32, true)
		case "int64_t", "ssize_t", "intptr_t", "ptrdiff_t":
			return x.conv(64, false)
		case "uint64_t", "size_t", "uintptr_t":
			return x.conv(64, true)
		}
	}
	var bits uint = 32
	unsigned, known := false, false
	longs := 0
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned, known = true, true
		case "signed", "int":
			known = true
		case "char":
			bits, known = 8, true
		case "short":
			bits, known = 16, true
		case "long":
			longs++
			known = true
		default:
			return x
		}
	}
	if !known {
		return x
	}
	if longs > 0 {
		bits = 64
	}
	return x.conv(bits, unsigned)
}

// parseIntLiteral parses a C integer literal: decimal, 0x hex, 0b binary or
// leading-zero octal, with optional u/l suffixes. Floating literals fail.
// The literal takes the first C type that holds its value.
func parseIntLiteral(lit string) (cval, error) {
	neg := false
	switch {
	case strings.HasPrefix(lit, "-"):
		neg = true
		lit = lit[1:]
	case strings.HasPrefix(lit, "+"):
		lit = lit[1:]
	}
	x, err := parseUnsignedLiteral(lit)
	if err != nil {
		return cval{}, err
	}
	if neg {
		return evalUnary("-", x)
	}
	return x, nil
}

func parseUnsignedLiteral(lit string) (cval, error) {
	body := strings.TrimRight(lit, "uUlL")
	suffix := strings.ToLower(lit[len(body):])
	s := strings.ReplaceAll(body, "'", "")
	if s == "" {
		return cval{}, errNotConstant
	}
	lower := strings.ToLower(s)
	decimal := !strings.HasPrefix(lower, "0x") && !strings.HasPrefix(lower, "0b") && (len(s) == 1 || s[0] != '0')
	if !strings.HasPrefix(lower, "0x") && strings.ContainsAny(lower, ".ep") {
		return cval{}, errNotConstant
	}
	if strings.ContainsAny(lower, "_+-") {
		return cval{}, errNotConstant
	}
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		s = "0o" + s[1:]
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return cval{}, errNotConstant
	}
	unsigned := strings.Contains(suffix, "u")
	long := strings.Contains(suffix, "l")
	switch {
	case unsigned && !long && u <= math.MaxUint32:
		return cval{v: int64(u), bits: 32, unsigned: true}, nil
	case unsigned:
		return cval{v: int64(u), bits: 64, unsigned: true}, nil
	case !long && u <= math.MaxInt32:
		return cint(int64(u)), nil
	case !long && !decimal && u <= math.MaxUint32:
		return cval{v: int64(u), bits: 32, unsigned: true}, nil
	case u <= math.MaxInt64:
		return cval{v: int64(u), bits: 64}, nil
	}
	// Values above MaxInt64 keep their bit pattern, as in C.
	return cval{v: int64(u), bits: 64, unsigned: true}, nil
}

// parseCharLiteral evaluates a single-character C literal such as 'a' or '\n'.
func parseCharLiteral(lit string) (cval, error) {
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return cval{}, errNotConstant
	}
	s, err := decodeCString(lit[1 : len(lit)-1])
	if err != nil || len(s) == 0 {
		return cval{}, errNotConstant
	}
	r := []rune(s)
	if len(r) != 1 {
		return cval{}, errNotConstant
	}
	return cint(int64(r[0])), nil
}

// stringToken matches one string literal or identifier of a macro body.
var stringToken = regexp.MustCompile(`^\s*(?:"((?:[^"\\\n]|\\.)*)"|([A-Za-z_][A-Za-z0-9_]*))`)

// evalString evaluates a macro body made of adjacent string literals and
// earlier string macros, concatenated.
func evalString(text string, sc *scope) (string, error) {
	rest := strings.TrimSpace(text)
	if rest == "" {
		return "", errNotConstant
	}
	var b strings.Builder
	for rest != "" {
		m := stringToken.FindStringSubmatchIndex(rest)
		if m == nil {
			return "", errNotConstant
		}
		switch {
		case m[2] >= 0:
			s, err := decodeCString(rest[m[2]:m[3]])
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			v, ok := sc.strings[rest[m[4]:m[5]]]
			if !ok {
				return "", errNotConstant
			}
			b.WriteString(v)
		}
		rest = strings.TrimSpace(rest[m[1]:])
	}
	return b.String(), nil
}

// decodeCString resolves the escape sequences of a C string literal body.
func decodeCString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		i++
		if i >= len(s) {
			return "", errNotConstant
		}
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '\'', '"', '?':
			b.WriteByte(e)
		case 'x':
			j := i + 1
			for j < len(s) && isHex(s[j]) {
				j++
			}
			if j == i+1 {
				return "", errNotConstant
			}
			v, err := strconv.ParseUint(s[i+1:j], 16, 8)
			if err != nil {
				return "", errNotConstant
			}
			b.WriteByte(byte(v))
			i = j - 1
		default:
			if e < '0' || e > '7' {
				return "", errNotConstant
			}
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, err := strconv.ParseUint(s[i:j], 8, 8)
			if err != nil {
				return "", errNotConstant
			}
			b.WriteByte(byte(v))
			i = j - 1
		}
	}
	return b.String(), nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// stripComments removes C comments from a macro body, leaving string and
// character literals intact.
func stripComments(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"' || ch == '\'':
			j := i + 1
			for j < len(s) && s[j] != ch {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				j = len(s) - 1
			}
			b.WriteString(s[i : j+1])
			i = j
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			return b.String()
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += end + 3
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
