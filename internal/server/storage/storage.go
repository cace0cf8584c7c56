// Package storage is the filesystem collaborator of the server: it creates,
// removes and enumerates group directories and the entries inside them.
//
// Paths are slash-separated and relative to the backend root. Callers build
// them with pathx, so they never contain "..".
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("entry not found")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrNotDirectory  = errors.New("not a directory")
	ErrIsDirectory   = errors.New("is a directory")
	ErrNotEmpty      = errors.New("directory not empty")
)

// Kind tells files and directories apart.
type Kind int

const (
	KindFile Kind = iota + 1
	KindDir
)

// Listing is the content of one directory partitioned by kind. Both slices
// are sorted by name.
type Listing struct {
	Files []string
	Dirs  []string
}

// Storage is implemented by every backend.
type Storage interface {
	// CreateDirectory creates one directory; its parent must exist.
	CreateDirectory(ctx context.Context, path string) error
	// RemoveDirectory removes an empty directory.
	RemoveDirectory(ctx context.Context, path string) error
	// DeleteFile removes a regular file.
	DeleteFile(ctx context.Context, path string) error
	// List enumerates the entries of a directory.
	List(ctx context.Context, path string) (Listing, error)
	// Stat reports the kind of the entry at path, or ErrNotFound.
	Stat(ctx context.Context, path string) (Kind, error)
}
