// Package groups provides the SQL repository for group records.
package groups

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// List returns every group ordered by name.
func (r *SQLRepository) List(ctx context.Context) ([]models.Group, error) {
	query := `SELECT id, name, path_name, owner_id FROM groups ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.PathName, &g.OwnerID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Create inserts group and fills in the assigned id.
func (r *SQLRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	query := r.dialect.Rebind(
		`INSERT INTO groups (name, path_name, owner_id)
		 VALUES (?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query, group.Name, group.PathName, group.OwnerID).Scan(&group.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return group, nil
}
