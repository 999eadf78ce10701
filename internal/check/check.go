// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check compares freshly generated bindings with the file on disk.
package check

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result is the outcome of comparing generated output with a file.
type Result struct {
	Path       string
	Missing    bool    // The file does not exist
	Stale      bool    // The file differs from the generated output
	Diff       string  // Line diff from the file to the generated output
	Similarity float64 // 1.0 when identical
}

// File compares want with the contents of path.
func File(path string, want []byte) (*Result, error) {
	have, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Result{Path: path, Missing: true, Stale: true, Diff: LineDiff("", string(want))}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res := &Result{Path: path, Similarity: 1.0}
	if string(have) == string(want) {
		return res, nil
	}
	res.Stale = true
	res.Diff = LineDiff(string(have), string(want))
	res.Similarity = similarity(string(have), string(want))
	return res, nil
}

// LineDiff renders a unified-style diff of two texts, one line per entry
// prefixed with "-", "+", or a space. Long unchanged runs are collapsed to a
// few lines on either side of a change.
func LineDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for i, d := range diffs {
		if d.Text == "" {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&out, "-", parts)
		case diffmatchpatch.DiffInsert:
			writeLines(&out, "+", parts)
		default:
			writeLines(&out, " ", trimContext(parts, i > 0, i < len(diffs)-1))
		}
	}
	return out.String()
}

const contextLines = 3

// trimContext keeps up to contextLines lines next to the neighbouring changes.
func trimContext(lines []string, before, after bool) []string {
	if len(lines) <= 2*contextLines+1 {
		return lines
	}
	var out []string
	if before {
		out = append(out, lines[:contextLines]...)
	}
	out = append(out, "...")
	if after {
		out = append(out, lines[len(lines)-contextLines:]...)
	}
	return out
}

func writeLines(b *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		b.WriteString(prefix)
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

// similarity computes the Levenshtein-based similarity ratio between two
// texts. Returns a value between 0.0 and 1.0.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	distance := dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}
