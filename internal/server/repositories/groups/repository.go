package groups

import (
	"context"

	"github.com/dmitrijs2005/groupshare/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
}
