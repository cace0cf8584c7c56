package accounts

import (
	"context"

	"github.com/dmitrijs2005/groupshare/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Account, error)
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	SetLocked(ctx context.Context, id int64, locked bool) error
}
