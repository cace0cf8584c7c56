package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/groupshare/internal/cryptox"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/attempts"
	"github.com/dmitrijs2005/groupshare/internal/server/metrics"
)

// login expects "<username> <password>" and binds the connection on success.
func (d *Dispatcher) login(ctx context.Context, req request) protocol.Message {
	resp := d.doLogin(ctx, req)
	metrics.AuthenticationAttempts.WithLabelValues("login", resp.Opcode.String()).Inc()
	return resp
}

func (d *Dispatcher) doLogin(ctx context.Context, req request) protocol.Message {
	userName, password, ok := strings.Cut(string(req.msg.Payload), " ")
	if !ok {
		return protocol.Status(protocol.StatusBadRequest)
	}

	a, ok := d.accounts.FindByUserName(userName)
	if !ok {
		return protocol.Status(protocol.StatusNotFound)
	}
	if d.boundElsewhere(req, a) {
		return protocol.Status(protocol.StatusForbidden)
	}

	a.Lock()
	defer a.Unlock()

	if d.accounts.IsBound(a) {
		d.logger.Warn(ctx, "login rejected, account in use", "conn", req.conn, "account", a.UserName)
		return protocol.Status(protocol.StatusAnotherClient)
	}
	if a.Locked {
		return protocol.Status(protocol.StatusLocked)
	}

	if !cryptox.VerifyPassword(password, a.PasswordSalt, a.PasswordHash) {
		out, err := d.attempts.RecordFailure(ctx, a, req.now)
		if err != nil {
			d.logger.Error(ctx, "persisting account lock failed", "account", a.UserName, "error", err)
		}
		if out == attempts.Locked {
			metrics.AccountLockouts.Inc()
			return protocol.Status(protocol.StatusLocked)
		}
		return protocol.Status(protocol.StatusWrongPassword)
	}

	if err := d.accounts.Bind(req.conn, a); err != nil {
		return protocol.Status(statusOf(err))
	}
	d.attempts.Clear(a.ID)
	a.LastActive = req.now

	metrics.SessionsCurrent.Set(float64(d.accounts.Bindings()))
	d.logger.Info(ctx, "login", "conn", req.conn, "account", a.UserName)
	return protocol.Status(protocol.StatusOK)
}

// logout unbinds the connection and revokes the cookie.
func (d *Dispatcher) logout(ctx context.Context, req request) protocol.Message {
	a, ok := d.accounts.Lookup(req.conn)
	if !ok {
		return protocol.Status(protocol.StatusNotLoggedIn)
	}

	a.Lock()
	defer a.Unlock()

	if _, still := d.accounts.Unbind(req.conn); !still {
		return protocol.Status(protocol.StatusNotLoggedIn)
	}
	a.LastActive = req.now
	a.LeaveGroup()
	a.Pending.Reset()
	d.accounts.ClearCookie(a)

	metrics.SessionsCurrent.Set(float64(d.accounts.Bindings()))
	d.logger.Info(ctx, "logout", "conn", req.conn, "account", a.UserName)
	return protocol.Status(protocol.StatusOK)
}

// reauth binds the connection to the account holding the cookie in the
// payload, provided the account was active recently enough.
func (d *Dispatcher) reauth(ctx context.Context, req request) protocol.Message {
	resp := d.doReauth(ctx, req)
	metrics.AuthenticationAttempts.WithLabelValues("reauth", resp.Opcode.String()).Inc()
	return resp
}

func (d *Dispatcher) doReauth(ctx context.Context, req request) protocol.Message {
	if len(req.msg.Payload) != accounts.CookieLength {
		return protocol.Status(protocol.StatusBadRequest)
	}
	cookie := string(req.msg.Payload)

	a, ok := d.accounts.FindByCookie(cookie)
	if !ok {
		return protocol.Status(protocol.StatusNotFound)
	}
	if d.boundElsewhere(req, a) {
		return protocol.Status(protocol.StatusForbidden)
	}

	a.Lock()
	defer a.Unlock()

	// The cookie may have been replaced or revoked before the lock was taken.
	if a.Cookie() != cookie {
		return protocol.Status(protocol.StatusNotFound)
	}
	if req.now.Sub(a.LastActive) > d.validity {
		return protocol.Status(protocol.StatusNotLoggedIn)
	}
	if a.Locked {
		d.accounts.ClearCookie(a)
		return protocol.Status(protocol.StatusLocked)
	}

	if err := d.accounts.Bind(req.conn, a); err != nil {
		if errors.Is(err, accounts.ErrAlreadyBound) {
			d.logger.Warn(ctx, "reauth rejected, account in use", "conn", req.conn, "account", a.UserName)
		}
		return protocol.Status(statusOf(err))
	}
	a.LastActive = req.now

	metrics.SessionsCurrent.Set(float64(d.accounts.Bindings()))
	d.logger.Info(ctx, "reauth", "conn", req.conn, "account", a.UserName)
	return protocol.Status(protocol.StatusOK)
}

// requestCookie issues a fresh cookie for the bound account and returns it
// as the payload of the OK response.
func (d *Dispatcher) requestCookie(ctx context.Context, req request) protocol.Message {
	a, ok := d.accounts.Lookup(req.conn)
	if !ok {
		return protocol.Status(protocol.StatusForbidden)
	}

	a.Lock()
	defer a.Unlock()

	cookie, err := d.accounts.IssueCookie(a)
	if err != nil {
		d.logger.Error(ctx, "cookie generation failed", "account", a.UserName, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}
	a.LastActive = req.now

	return protocol.NewMessage(protocol.StatusOK, cookie)
}

// boundElsewhere reports whether the requesting connection already carries a
// session for an account other than a. Such a connection has to log out
// before it can authenticate again.
func (d *Dispatcher) boundElsewhere(req request, a *accounts.Account) bool {
	cur, ok := d.accounts.Lookup(req.conn)
	return ok && cur != a
}
