// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package header

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnknownEncoding is returned when the configured header charset has no
// decoder.
var ErrUnknownEncoding = errors.New("unknown header encoding")

// includeRegex matches #include <x> and #include "x" lines.
var includeRegex = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]+)[>"]`)

// Source describes the header text handed to the parser: a synthetic
// top-level header plus the directories its includes resolve against.
type Source struct {
	Name        string   // Virtual file name of the synthetic header
	Contents    string   // Synthetic header text
	IncludeDirs []string // Searched in order for #include targets
	Encoding    string   // Charset of included files (empty = UTF-8)
}

// Merged is the synthetic header with every resolvable include inlined.
type Merged struct {
	Text       []byte
	Files      []string // Included files, in inclusion order
	Unresolved []string // Include targets not found in any directory
}

// Load inlines every #include target found in the include directories,
// recursively, each file at most once. Targets that cannot be found (system
// headers, typically) are left in place and reported in Unresolved.
func Load(src Source, log logrus.FieldLogger) (*Merged, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := &loader{
		src:     src,
		log:     log,
		visited: make(map[string]bool),
	}
	if l.src.Name == "" {
		l.src.Name = "<header>"
	}

	var out bytes.Buffer
	if err := l.expand(&out, []byte(src.Contents), ""); err != nil {
		return nil, err
	}
	return &Merged{Text: out.Bytes(), Files: l.files, Unresolved: l.unresolved}, nil
}

type loader struct {
	src        Source
	log        logrus.FieldLogger
	visited    map[string]bool
	files      []string
	unresolved []string
}

// expand copies text to out, replacing resolvable include lines with the
// target's expanded contents. dir is the including file's directory, searched
// first for quoted includes.
func (l *loader) expand(out *bytes.Buffer, text []byte, dir string) error {
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		path := l.resolve(m[2], m[1] == `"`, dir)
		if path == "" {
			l.log.WithField("include", m[2]).Debug("include not found, skipping")
			l.unresolved = append(l.unresolved, m[2])
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		if l.visited[path] {
			continue
		}
		l.visited[path] = true
		l.files = append(l.files, path)

		data, err := l.read(path)
		if err != nil {
			return err
		}
		if err := l.expand(out, data, filepath.Dir(path)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", l.src.Name, err)
	}
	return nil
}

// resolve returns the absolute path of an include target, or "" when no
// directory holds it.
func (l *loader) resolve(name string, quoted bool, dir string) string {
	var dirs []string
	if quoted && dir != "" {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, l.src.IncludeDirs...)
	for _, d := range dirs {
		p := filepath.Join(d, name)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// read loads a header file and decodes it to UTF-8.
func (l *loader) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data, l.src.Encoding)
}

// Decode converts data from the named charset to UTF-8. An empty name or a
// UTF-8 alias returns data unchanged.
func Decode(data []byte, encoding string) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return data, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", encoding, err)
	}
	return out, nil
}
