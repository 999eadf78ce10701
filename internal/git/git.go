// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git reads the revision of the SDK checkout that supplies the
// headers, so generated files can record where they came from.
package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// ShortHashLen is the number of hex digits kept from the HEAD hash.
const ShortHashLen = 12

// ErrNoGit is returned when the directory is not inside a git repository.
var ErrNoGit = errors.New("not a git repository")

// Repo wraps a go-git repository.
type Repo struct {
	repo *gogit.Repository
}

// Open finds the repository containing dir, walking up to parent
// directories as git does.
func Open(dir string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r}, nil
}

// Head returns the abbreviated hash of the HEAD commit.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash().String()[:ShortHashLen], nil
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// Revision describes the checkout: the short HEAD hash, with a "-dirty"
// suffix when the working tree has local changes.
func (r *Repo) Revision() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	dirty, err := r.IsDirty()
	if err != nil {
		return "", err
	}
	if dirty {
		head += "-dirty"
	}
	return head, nil
}

// Revision opens the repository around dir and returns its revision.
func Revision(dir string) (string, error) {
	r, err := Open(dir)
	if err != nil {
		return "", err
	}
	return r.Revision()
}
