package members

import "context"

type Repository interface {
	Exists(ctx context.Context, accountID int64, groupName string) (bool, error)
	GroupsFor(ctx context.Context, accountID int64) ([]string, error)
	Add(ctx context.Context, accountID, groupID int64) error
	Remove(ctx context.Context, accountID, groupID int64) error
}
