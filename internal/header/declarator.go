// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package header

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// declInfo is what a declarator says about the declared name.
type declInfo struct {
	name     string
	pointers int          // pointer levels applied to the base type
	array    string       // array size expression
	isArray  bool         // array without a size, e.g. a[]
	params   *sitter.Node // parameter_list when the declarator is a function
	funcPtr  bool         // pointer to function
}

// readDeclarator unwraps a declarator chain. Pointers met outside a function
// declarator apply to the base (or return) type; a pointer met inside one
// makes the whole thing a function pointer.
func readDeclarator(n *sitter.Node, src []byte) declInfo {
	var d declInfo
	unwrap(n, src, &d, false)
	return d
}

func unwrap(n *sitter.Node, src []byte, d *declInfo, inFunc bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "type_identifier", "field_identifier", "primitive_type":
		d.name = n.Content(src)
	case "pointer_declarator", "abstract_pointer_declarator":
		if inFunc {
			d.funcPtr = true
		} else {
			d.pointers++
		}
		unwrap(n.ChildByFieldName("declarator"), src, d, inFunc)
	case "array_declarator", "abstract_array_declarator":
		if size := n.ChildByFieldName("size"); size != nil {
			d.array = size.Content(src)
		} else {
			d.isArray = true
		}
		unwrap(n.ChildByFieldName("declarator"), src, d, inFunc)
	case "function_declarator", "abstract_function_declarator":
		if d.params != nil {
			d.funcPtr = true
		} else {
			d.params = n.ChildByFieldName("parameters")
		}
		unwrap(n.ChildByFieldName("declarator"), src, d, true)
	case "parenthesized_declarator", "abstract_parenthesized_declarator":
		if n.NamedChildCount() > 0 {
			unwrap(n.NamedChild(0), src, d, inFunc)
		}
	case "init_declarator":
		unwrap(n.ChildByFieldName("declarator"), src, d, inFunc)
	}
}
