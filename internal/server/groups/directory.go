package groups

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/pathx"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
)

var (
	ErrGroupExists   = errors.New("group already exists")
	ErrInvalidName   = errors.New("invalid group name")
	ErrPathCollision = errors.New("no free storage path for group")
)

// maxPathAttempts bounds how many "_" suffixes are tried when the storage
// directory name is taken.
const maxPathAttempts = 8

// Recorder persists a new group and the owner's membership, returning the
// assigned id.
type Recorder interface {
	CreateGroup(ctx context.Context, name, pathName string, ownerID int64) (int64, error)
}

// Directory is the in-memory collection of groups. Lookups take a read lock;
// creation is serialized so that name checks and directory creation cannot
// interleave.
type Directory struct {
	mu     sync.RWMutex
	byName map[string]*Group

	createMu sync.Mutex
	recorder Recorder
	fs       storage.Storage
	logger   logging.Logger
}

// NewDirectory builds a Directory holding the groups loaded at startup.
func NewDirectory(recorder Recorder, fs storage.Storage, logger logging.Logger, loaded []Group) *Directory {
	d := &Directory{
		byName:   make(map[string]*Group, len(loaded)),
		recorder: recorder,
		fs:       fs,
		logger:   logger.With("module", "groups"),
	}
	for i := range loaded {
		g := loaded[i]
		d.byName[g.Name] = &g
	}
	return d
}

// FindByName returns the group called name.
func (d *Directory) FindByName(name string) (*Group, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.byName[name]
	return g, ok
}

// Create validates name, creates the group's storage directory, persists the
// group with ownerID as its first member and adds it to the directory. When
// the directory name is already taken a "_" is appended and creation retried.
// If persisting fails the directory is removed again on a best-effort basis.
func (d *Directory) Create(ctx context.Context, name string, ownerID int64) (*Group, error) {
	if !pathx.ValidEntry(name) {
		return nil, ErrInvalidName
	}

	d.createMu.Lock()
	defer d.createMu.Unlock()

	if _, ok := d.FindByName(name); ok {
		return nil, ErrGroupExists
	}

	pathName, err := d.createDirectory(ctx, name)
	if err != nil {
		return nil, err
	}

	id, err := d.recorder.CreateGroup(ctx, name, pathName, ownerID)
	if err != nil {
		if rmErr := d.fs.RemoveDirectory(ctx, pathName); rmErr != nil {
			d.logger.Warn(ctx, "group directory rollback failed", "path", pathName, "error", rmErr)
		}
		return nil, fmt.Errorf("persist group: %w", err)
	}

	g := &Group{ID: id, Name: name, PathName: pathName, OwnerID: ownerID}

	d.mu.Lock()
	d.byName[name] = g
	d.mu.Unlock()

	d.logger.Info(ctx, "group created", "group", name, "path", pathName, "owner", ownerID)
	return g, nil
}

func (d *Directory) createDirectory(ctx context.Context, name string) (string, error) {
	pathName := name
	for i := 0; i < maxPathAttempts; i++ {
		err := d.fs.CreateDirectory(ctx, pathName)
		switch {
		case err == nil:
			return pathName, nil
		case errors.Is(err, storage.ErrAlreadyExists):
			pathName += "_"
		default:
			return "", fmt.Errorf("create group directory: %w", err)
		}
	}
	return "", ErrPathCollision
}
