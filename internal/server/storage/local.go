package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// Local keeps group directories under a root directory on the local disk.
type Local struct {
	root string
}

// NewLocal returns a backend rooted at root, creating root if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) abs(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}

func (l *Local) CreateDirectory(ctx context.Context, p string) error {
	if err := os.Mkdir(l.abs(p), 0o770); err != nil {
		return mapErr(err)
	}
	return nil
}

func (l *Local) RemoveDirectory(ctx context.Context, p string) error {
	kind, err := l.Stat(ctx, p)
	if err != nil {
		return err
	}
	if kind != KindDir {
		return ErrNotDirectory
	}
	if err := os.Remove(l.abs(p)); err != nil {
		return mapErr(err)
	}
	return nil
}

func (l *Local) DeleteFile(ctx context.Context, p string) error {
	kind, err := l.Stat(ctx, p)
	if err != nil {
		return err
	}
	if kind == KindDir {
		return ErrIsDirectory
	}
	if err := os.Remove(l.abs(p)); err != nil {
		return mapErr(err)
	}
	return nil
}

func (l *Local) List(ctx context.Context, p string) (Listing, error) {
	entries, err := os.ReadDir(l.abs(p))
	if err != nil {
		return Listing{}, mapErr(err)
	}

	var out Listing
	for _, e := range entries {
		if e.IsDir() {
			out.Dirs = append(out.Dirs, e.Name())
		} else {
			out.Files = append(out.Files, e.Name())
		}
	}
	sort.Strings(out.Files)
	sort.Strings(out.Dirs)
	return out, nil
}

func (l *Local) Stat(ctx context.Context, p string) (Kind, error) {
	fi, err := os.Stat(l.abs(p))
	if err != nil {
		return 0, mapErr(err)
	}
	if fi.IsDir() {
		return KindDir, nil
	}
	return KindFile, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	// ENOTEMPTY also matches fs.ErrExist, so it is checked first.
	case errors.Is(err, syscall.ENOTEMPTY):
		return fmt.Errorf("%w: %v", ErrNotEmpty, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	return err
}
