// Package accounts provides the SQL repository for stored user accounts.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/common"
	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
)

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository constructs a repository bound to the given DBTX. Queries
// are rebound for dialect.
func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// List returns every account ordered by id.
func (r *SQLRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT id, username, password_hash, password_salt, locked FROM accounts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserName, &a.PasswordHash, &a.PasswordSalt, &a.Locked); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	query := r.dialect.Rebind(
		`SELECT id, username, password_hash, password_salt, locked FROM accounts
		 WHERE username = ?`)

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&a.ID, &a.UserName, &a.PasswordHash, &a.PasswordSalt, &a.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts account and fills in the assigned id.
func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := r.dialect.Rebind(
		`INSERT INTO accounts (username, password_hash, password_salt, locked)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		account.UserName, account.PasswordHash, account.PasswordSalt, account.Locked).Scan(&account.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

// SetLocked updates the locked flag. It returns common.ErrorNotFound when no
// account has the given id.
func (r *SQLRepository) SetLocked(ctx context.Context, id int64, locked bool) error {
	query := r.dialect.Rebind(`UPDATE accounts SET locked = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, locked, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
