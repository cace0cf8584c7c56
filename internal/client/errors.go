package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/protocol"
)

var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidCookie      = errors.New("invalid cookie")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// StatusError is returned when the server answers a request with a status
// other than OK.
type StatusError struct {
	Op     protocol.Opcode
	Status protocol.Opcode
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// IsStatus reports whether err is a StatusError carrying status.
func IsStatus(err error, status protocol.Opcode) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
