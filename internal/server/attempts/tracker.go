// Package attempts counts failed logins per account and locks accounts that
// exceed the limit within the reset window.
package attempts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
)

const (
	DefaultLimit  = 5
	DefaultWindow = time.Hour
)

// Outcome is the result of recording a failed login.
type Outcome int

const (
	// Continue means the account may try again.
	Continue Outcome = iota
	// Locked means this failure locked the account.
	Locked
)

func (o Outcome) String() string {
	if o == Locked {
		return "locked"
	}
	return "continue"
}

// Locker persists the locked flag of an account.
type Locker interface {
	LockAccount(ctx context.Context, accountID int64) error
}

type record struct {
	count int
	last  time.Time
}

// Tracker holds attempt records for all accounts under a single mutex, so
// that reading a record, deciding and locking the account happen atomically
// with respect to every other failed login.
type Tracker struct {
	mu      sync.Mutex
	records map[int64]*record

	limit  int
	window time.Duration
	locker Locker
	logger logging.Logger
}

// NewTracker returns a Tracker that locks an account once its failure count
// exceeds limit. A failure more than window after the previous one restarts
// the count at one.
func NewTracker(limit int, window time.Duration, locker Locker, logger logging.Logger) *Tracker {
	return &Tracker{
		records: make(map[int64]*record),
		limit:   limit,
		window:  window,
		locker:  locker,
		logger:  logger.With("module", "attempts"),
	}
}

// RecordFailure registers a failed login for a at now. Callers hold a's lock.
// When the count exceeds the limit a is marked locked and the lock is
// persisted. A persistence failure is returned together with Locked; the
// in-memory lock stays in effect.
func (t *Tracker) RecordFailure(ctx context.Context, a *accounts.Account, now time.Time) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.records[a.ID]
	switch {
	case !ok:
		r = &record{count: 1}
		t.records[a.ID] = r
	case now.Sub(r.last) > t.window:
		r.count = 1
	default:
		r.count++
	}
	r.last = now

	if r.count <= t.limit {
		return Continue, nil
	}

	a.Locked = true
	t.logger.Warn(ctx, "account locked after failed logins", "account", a.UserName, "attempts", r.count)
	if err := t.locker.LockAccount(ctx, a.ID); err != nil {
		return Locked, fmt.Errorf("persist lock: %w", err)
	}
	return Locked, nil
}

// Clear forgets the record of accountID. Clearing an absent record is a
// no-op.
func (t *Tracker) Clear(accountID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, accountID)
}

// Count returns the current failure count of accountID. Only tests use it.
func (t *Tracker) Count(accountID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.records[accountID]; ok {
		return r.count
	}
	return 0
}
