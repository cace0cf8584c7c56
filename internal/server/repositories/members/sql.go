// Package members provides the SQL repository for the account-to-group
// membership relation.
package members

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Exists reports whether accountID is a member of the group named groupName.
func (r *SQLRepository) Exists(ctx context.Context, accountID int64, groupName string) (bool, error) {
	query := r.dialect.Rebind(
		`SELECT COUNT(*) FROM group_members m
		 JOIN groups g ON g.id = m.group_id
		 WHERE m.account_id = ? AND g.name = ?`)

	var n int64
	if err := r.db.QueryRowContext(ctx, query, accountID, groupName).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// GroupsFor returns the names of the groups accountID belongs to, ordered by
// name.
func (r *SQLRepository) GroupsFor(ctx context.Context, accountID int64) ([]string, error) {
	query := r.dialect.Rebind(
		`SELECT g.name FROM group_members m
		 JOIN groups g ON g.id = m.group_id
		 WHERE m.account_id = ?
		 ORDER BY g.name`)

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return names, nil
}

func (r *SQLRepository) Add(ctx context.Context, accountID, groupID int64) error {
	query := r.dialect.Rebind(`INSERT INTO group_members (group_id, account_id) VALUES (?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, groupID, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Remove(ctx context.Context, accountID, groupID int64) error {
	query := r.dialect.Rebind(`DELETE FROM group_members WHERE group_id = ? AND account_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, groupID, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
