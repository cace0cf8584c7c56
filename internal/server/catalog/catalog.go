// Package catalog is the persistence collaborator of the server core. It
// implements the narrow query and command set the core needs on top of the
// SQL repositories.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/repomanager"
)

type Catalog struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func New(db *sql.DB, rm repomanager.RepositoryManager) *Catalog {
	return &Catalog{db: db, rm: rm}
}

// LoadAccounts returns every stored account.
func (c *Catalog) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	list, err := c.rm.Accounts(c.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return list, nil
}

// LoadGroups returns every stored group in the form the group directory
// keeps in memory.
func (c *Catalog) LoadGroups(ctx context.Context) ([]groups.Group, error) {
	list, err := c.rm.Groups(c.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	out := make([]groups.Group, 0, len(list))
	for _, g := range list {
		out = append(out, groups.Group{ID: g.ID, Name: g.Name, PathName: g.PathName, OwnerID: g.OwnerID})
	}
	return out, nil
}

// HasAccess reports whether accountID is a member of groupName.
func (c *Catalog) HasAccess(ctx context.Context, accountID int64, groupName string) (bool, error) {
	return c.rm.Members(c.db).Exists(ctx, accountID, groupName)
}

// GroupsFor returns the names of the groups accountID belongs to.
func (c *Catalog) GroupsFor(ctx context.Context, accountID int64) ([]string, error) {
	return c.rm.Members(c.db).GroupsFor(ctx, accountID)
}

func (c *Catalog) AddMembership(ctx context.Context, accountID, groupID int64) error {
	return c.rm.Members(c.db).Add(ctx, accountID, groupID)
}

func (c *Catalog) RemoveMembership(ctx context.Context, accountID, groupID int64) error {
	return c.rm.Members(c.db).Remove(ctx, accountID, groupID)
}

// CreateGroup inserts the group and the owner's membership in one
// transaction and returns the new group id.
func (c *Catalog) CreateGroup(ctx context.Context, name, pathName string, ownerID int64) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := c.rm.Groups(tx).Create(ctx, &models.Group{Name: name, PathName: pathName, OwnerID: ownerID})
		if err != nil {
			return err
		}
		if err := c.rm.Members(tx).Add(ctx, ownerID, g.ID); err != nil {
			return err
		}
		id = g.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create group %q: %w", name, err)
	}
	return id, nil
}

// LockAccount persists the locked flag of accountID.
func (c *Catalog) LockAccount(ctx context.Context, accountID int64) error {
	return c.rm.Accounts(c.db).SetLocked(ctx, accountID, true)
}
