package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/members"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Groups(db dbx.DBTX) groups.Repository
	Members(db dbx.DBTX) members.Repository
}
