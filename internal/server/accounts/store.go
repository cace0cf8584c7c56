package accounts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/groupshare/internal/common"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
	"github.com/google/uuid"
)

// CookieLength is the number of characters in a session cookie.
const CookieLength = 32

var (
	// ErrAlreadyBound means a live connection is already bound to the account.
	ErrAlreadyBound = errors.New("account is bound to another connection")
	// ErrConnectionBound means the connection already carries a session.
	ErrConnectionBound = errors.New("connection is already bound")
)

// cookieSource generates candidate cookies. Tests replace it to force
// collisions.
var cookieSource = func() (string, error) {
	return common.MakeRandString(CookieLength, common.Alphanumeric)
}

// Store is the account table plus the session bindings. Its own mutex guards
// the maps only; it never takes an account lock while holding it, so callers
// may call into the Store with an account lock held.
type Store struct {
	mu         sync.RWMutex
	byName     map[string]*Account
	byCookie   map[string]*Account
	bindings   map[uuid.UUID]*Account
	boundConns map[int64]uuid.UUID
}

// NewStore builds a Store from the persisted accounts.
func NewStore(records []models.Account) *Store {
	s := &Store{
		byName:     make(map[string]*Account, len(records)),
		byCookie:   make(map[string]*Account),
		bindings:   make(map[uuid.UUID]*Account),
		boundConns: make(map[int64]uuid.UUID),
	}
	for _, r := range records {
		s.byName[r.UserName] = &Account{
			ID:           r.ID,
			UserName:     r.UserName,
			PasswordHash: r.PasswordHash,
			PasswordSalt: r.PasswordSalt,
			Locked:       r.Locked,
		}
	}
	return s
}

func (s *Store) FindByUserName(name string) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byName[name]
	return a, ok
}

func (s *Store) FindByCookie(cookie string) (*Account, bool) {
	if cookie == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byCookie[cookie]
	return a, ok
}

// IssueCookie generates a cookie no other account holds, replaces a's
// previous cookie with it and returns it. Callers hold a's lock.
func (s *Store) IssueCookie(a *Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cookie string
	for {
		c, err := cookieSource()
		if err != nil {
			return "", fmt.Errorf("generate cookie: %w", err)
		}
		if _, taken := s.byCookie[c]; !taken {
			cookie = c
			break
		}
	}

	if a.cookie != "" {
		delete(s.byCookie, a.cookie)
	}
	a.cookie = cookie
	s.byCookie[cookie] = a
	return cookie, nil
}

// ClearCookie revokes a's cookie. Callers hold a's lock.
func (s *Store) ClearCookie(a *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.cookie != "" {
		delete(s.byCookie, a.cookie)
		a.cookie = ""
	}
}

// Bind attaches a to conn. It fails with ErrAlreadyBound when any live
// connection, conn included, is already bound to a, and with
// ErrConnectionBound when conn is bound to a different account.
func (s *Store) Bind(conn uuid.UUID, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, bound := s.boundConns[a.ID]; bound {
		return ErrAlreadyBound
	}
	if _, ok := s.bindings[conn]; ok {
		return ErrConnectionBound
	}
	s.bindings[conn] = a
	s.boundConns[a.ID] = conn
	return nil
}

// Unbind removes the binding of conn and returns the account it was bound
// to. Unbinding an unbound connection is a no-op.
func (s *Store) Unbind(conn uuid.UUID) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.bindings[conn]
	if !ok {
		return nil, false
	}
	delete(s.bindings, conn)
	delete(s.boundConns, a.ID)
	return a, true
}

// Lookup returns the account bound to conn.
func (s *Store) Lookup(conn uuid.UUID) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.bindings[conn]
	return a, ok
}

// IsBound reports whether any live connection is bound to a.
func (s *Store) IsBound(a *Account) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.boundConns[a.ID]
	return ok
}

// Bindings returns the number of live bindings.
func (s *Store) Bindings() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
