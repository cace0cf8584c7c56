// Package dispatch routes decoded requests to the auth, group, browse and
// continue handlers and turns every outcome into exactly one response
// message.
package dispatch

import (
	"context"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/attempts"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/metrics"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
	"github.com/google/uuid"
)

// DefaultSessionValidity is how long after its last activity an account may
// still reauthenticate with its cookie.
const DefaultSessionValidity = 24 * time.Hour

// Membership answers and changes which accounts belong to which groups.
type Membership interface {
	HasAccess(ctx context.Context, accountID int64, groupName string) (bool, error)
	GroupsFor(ctx context.Context, accountID int64) ([]string, error)
	AddMembership(ctx context.Context, accountID, groupID int64) error
	RemoveMembership(ctx context.Context, accountID, groupID int64) error
}

// Config carries the collaborators of a Dispatcher.
type Config struct {
	Accounts        *accounts.Store
	Attempts        *attempts.Tracker
	Groups          *groups.Directory
	Members         Membership
	Storage         storage.Storage
	SessionValidity time.Duration
	Logger          logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type request struct {
	conn uuid.UUID
	msg  protocol.Message
	now  time.Time
}

type handlerFunc func(ctx context.Context, req request) protocol.Message

// Dispatcher is safe for concurrent use by many connections.
type Dispatcher struct {
	accounts *accounts.Store
	attempts *attempts.Tracker
	groups   *groups.Directory
	members  Membership
	fs       storage.Storage
	validity time.Duration
	now      func() time.Time
	logger   logging.Logger

	routes map[protocol.Opcode]handlerFunc
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		accounts: cfg.Accounts,
		attempts: cfg.Attempts,
		groups:   cfg.Groups,
		members:  cfg.Members,
		fs:       cfg.Storage,
		validity: cfg.SessionValidity,
		now:      cfg.Now,
		logger:   cfg.Logger.With("module", "dispatch"),
	}
	if d.validity <= 0 {
		d.validity = DefaultSessionValidity
	}
	if d.now == nil {
		d.now = time.Now
	}

	d.routes = map[protocol.Opcode]handlerFunc{
		protocol.OpLogin:         d.login,
		protocol.OpLogout:        d.logout,
		protocol.OpReauth:        d.reauth,
		protocol.OpRequestCookie: d.requestCookie,

		protocol.OpGroupList:  d.withSession(d.groupList),
		protocol.OpGroupUse:   d.withSession(d.groupUse),
		protocol.OpGroupJoin:  d.withSession(d.groupJoin),
		protocol.OpGroupLeave: d.withSession(d.groupLeave),
		protocol.OpGroupNew:   d.withSession(d.groupNew),

		protocol.OpBrowseList:       d.withGroup(d.browseList),
		protocol.OpBrowseCd:         d.withGroup(d.browseCd),
		protocol.OpBrowseMkdir:      d.withGroup(d.browseMkdir),
		protocol.OpBrowseDeleteFile: d.withGroup(d.browseDeleteFile),
		protocol.OpBrowseDeleteDir:  d.withGroup(d.browseDeleteDir),

		protocol.OpContinue: d.withSession(d.continueQueue),
	}
	return d
}

// Handle processes one request from conn and returns the response to send.
// It never fails: every error becomes a status opcode.
func (d *Dispatcher) Handle(ctx context.Context, conn uuid.UUID, msg protocol.Message) protocol.Message {
	start := time.Now()

	var resp protocol.Message
	h, ok := d.routes[msg.Opcode]
	if ok {
		resp = h(ctx, request{conn: conn, msg: msg, now: d.now()})
	} else {
		resp = protocol.Status(protocol.StatusBadRequest)
	}

	op := "unknown"
	if ok {
		op = msg.Opcode.String()
	}
	metrics.RequestsTotal.WithLabelValues(op, resp.Opcode.String()).Inc()
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	d.logger.Debug(ctx, "request handled", "conn", conn, "opcode", op, "status", resp.Opcode)

	return resp
}

// Disconnect removes the binding of conn, if any, and drops the session
// state that only makes sense while bound. The cookie and last activity time
// survive so the account can reauthenticate.
func (d *Dispatcher) Disconnect(ctx context.Context, conn uuid.UUID) {
	a, ok := d.accounts.Lookup(conn)
	if !ok {
		return
	}
	a.Lock()
	if _, still := d.accounts.Unbind(conn); still {
		a.LeaveGroup()
		a.Pending.Reset()
	}
	a.Unlock()

	metrics.SessionsCurrent.Set(float64(d.accounts.Bindings()))
	d.logger.Info(ctx, "session closed", "conn", conn, "account", a.UserName)
}

type sessionHandler func(ctx context.Context, req request, a *accounts.Account) protocol.Message

// withSession rejects requests from unbound connections with Forbidden.
func (d *Dispatcher) withSession(h sessionHandler) handlerFunc {
	return func(ctx context.Context, req request) protocol.Message {
		a, ok := d.accounts.Lookup(req.conn)
		if !ok {
			return protocol.Status(protocol.StatusForbidden)
		}
		return h(ctx, req, a)
	}
}

// workspace is a snapshot of where a session is browsing.
type workspace struct {
	account *accounts.Account
	group   *groups.Group
	dir     string
}

type browseHandler func(ctx context.Context, req request, ws workspace) protocol.Message

// withGroup additionally requires a working group.
func (d *Dispatcher) withGroup(h browseHandler) handlerFunc {
	return d.withSession(func(ctx context.Context, req request, a *accounts.Account) protocol.Message {
		a.Lock()
		ws := workspace{account: a, group: a.WorkingGroup, dir: a.WorkingDir}
		a.Unlock()

		if ws.group == nil {
			return protocol.Status(protocol.StatusForbidden)
		}
		return h(ctx, req, ws)
	})
}

// continueQueue delivers the next pending item of a multi-item response.
func (d *Dispatcher) continueQueue(_ context.Context, _ request, a *accounts.Account) protocol.Message {
	a.Lock()
	defer a.Unlock()

	m, err := a.Pending.Pop()
	if err != nil {
		return protocol.Status(statusOf(err))
	}
	return m
}
