// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package output

import (
	"errors"
	"fmt"
	"go/scanner"
	"strings"
)

const contextLines = 2

// SourceError reports generated code that failed to parse, with the
// surrounding lines of the offending source.
type SourceError struct {
	Buffer  string // "bindings", "enums", or "merged"
	Line    int    // 1-based line of the first error, 0 if unknown
	Context string
	Err     error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%v: %s: %v", ErrInvalidSource, e.Buffer, e.Err)
	if e.Context != "" {
		msg += "\n" + e.Context
	}
	return msg
}

func (e *SourceError) Unwrap() []error { return []error{ErrInvalidSource, e.Err} }

// sourceError builds a SourceError for a parse failure of src. lineOffset
// is subtracted from reported lines when src was parsed behind a prefix.
func sourceError(buffer string, src []byte, lineOffset int, err error) error {
	se := &SourceError{Buffer: buffer, Err: err}
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		se.Line = list[0].Pos.Line - lineOffset
		se.Context = codeContext(src, se.Line, contextLines)
	}
	return se
}

// codeContext extracts numbered lines around errorLine, marking the line
// itself.
func codeContext(src []byte, errorLine, contextLines int) string {
	if errorLine <= 0 {
		return ""
	}
	lines := strings.Split(string(src), "\n")
	start := errorLine - contextLines - 1
	if start < 0 {
		start = 0
	}
	end := errorLine + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		marker := "  "
		if lineNum == errorLine {
			marker = "> "
		}
		buf.WriteString(fmt.Sprintf("%s%4d │ %s\n", marker, lineNum, lines[i]))
	}
	return buf.String()
}
