// Package accounts holds the in-memory account table, the cookie index and
// the bindings between live connections and authenticated accounts.
package accounts

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/server/groups"
)

// Account is the runtime state of one user account. Identity fields are
// immutable after load. Session fields may only be read or written between
// Lock and Unlock.
type Account struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	PasswordSalt []byte

	mu sync.Mutex

	Locked       bool
	LastActive   time.Time
	WorkingGroup *groups.Group
	// WorkingDir is relative to the working group's root; empty is the root.
	WorkingDir string
	Pending    Queue

	// cookie is owned by Store so that the cookie index stays consistent.
	cookie string
}

// Lock acquires the account's exclusive lock.
func (a *Account) Lock() { a.mu.Lock() }

// Unlock releases the account's exclusive lock.
func (a *Account) Unlock() { a.mu.Unlock() }

// Cookie returns the current session cookie, empty if none was issued.
// Callers hold the account lock.
func (a *Account) Cookie() string { return a.cookie }

// LeaveGroup clears the working group and directory. Callers hold the
// account lock.
func (a *Account) LeaveGroup() {
	a.WorkingGroup = nil
	a.WorkingDir = ""
}

// EnterGroup makes g the working group with its root as working directory.
// Callers hold the account lock.
func (a *Account) EnterGroup(g *groups.Group) {
	a.WorkingGroup = g
	a.WorkingDir = ""
}
