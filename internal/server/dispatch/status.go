package dispatch

import (
	"errors"

	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
)

// statusOf maps collaborator errors to response status codes. Anything not
// listed is a server failure.
func statusOf(err error) protocol.Opcode {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, storage.ErrNotFound):
		return protocol.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return protocol.StatusAlreadyExists
	case errors.Is(err, groups.ErrGroupExists):
		return protocol.StatusGroupExists
	case errors.Is(err, groups.ErrInvalidName):
		return protocol.StatusBadRequest
	case errors.Is(err, accounts.ErrQueueEmpty):
		return protocol.StatusBadRequest
	case errors.Is(err, accounts.ErrAlreadyBound):
		return protocol.StatusAnotherClient
	case errors.Is(err, accounts.ErrConnectionBound):
		return protocol.StatusForbidden
	default:
		return protocol.StatusServerFail
	}
}
