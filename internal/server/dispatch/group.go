package dispatch

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
)

// groupList replies with the number of groups the account belongs to and
// queues one group-name message per group.
func (d *Dispatcher) groupList(ctx context.Context, _ request, a *accounts.Account) protocol.Message {
	names, err := d.members.GroupsFor(ctx, a.ID)
	if err != nil {
		d.logger.Error(ctx, "listing groups failed", "account", a.UserName, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}

	items := make([]protocol.Message, 0, len(names))
	for _, name := range names {
		items = append(items, protocol.NewMessage(protocol.OpGroupName, name))
	}

	a.Lock()
	a.Pending.Reset()
	a.Pending.Push(items...)
	a.Unlock()

	return protocol.Count(protocol.OpGroupCount, len(names))
}

// groupUse makes the named group the working group, provided the account is
// a member.
func (d *Dispatcher) groupUse(ctx context.Context, req request, a *accounts.Account) protocol.Message {
	name := string(req.msg.Payload)

	if status, ok := d.requireMember(ctx, a, name); !ok {
		return protocol.Status(status)
	}
	g, ok := d.groups.FindByName(name)
	if !ok {
		return protocol.Status(protocol.StatusNotFound)
	}

	a.Lock()
	a.EnterGroup(g)
	a.Unlock()

	return protocol.Status(protocol.StatusOK)
}

func (d *Dispatcher) groupJoin(ctx context.Context, req request, a *accounts.Account) protocol.Message {
	name := string(req.msg.Payload)

	member, err := d.members.HasAccess(ctx, a.ID, name)
	if err != nil {
		d.logger.Error(ctx, "membership lookup failed", "account", a.UserName, "group", name, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}
	if member {
		return protocol.Status(protocol.StatusAlreadyInGroup)
	}

	g, ok := d.groups.FindByName(name)
	if !ok {
		return protocol.Status(protocol.StatusNotFound)
	}
	if err := d.members.AddMembership(ctx, a.ID, g.ID); err != nil {
		d.logger.Error(ctx, "joining group failed", "account", a.UserName, "group", name, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}

	d.logger.Info(ctx, "group joined", "account", a.UserName, "group", name)
	return protocol.Status(protocol.StatusOK)
}

// groupLeave drops the membership. Leaving the working group also clears it.
func (d *Dispatcher) groupLeave(ctx context.Context, req request, a *accounts.Account) protocol.Message {
	name := string(req.msg.Payload)

	if status, ok := d.requireMember(ctx, a, name); !ok {
		return protocol.Status(status)
	}
	g, ok := d.groups.FindByName(name)
	if !ok {
		return protocol.Status(protocol.StatusNotFound)
	}
	if err := d.members.RemoveMembership(ctx, a.ID, g.ID); err != nil {
		d.logger.Error(ctx, "leaving group failed", "account", a.UserName, "group", name, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}

	a.Lock()
	if a.WorkingGroup != nil && a.WorkingGroup.ID == g.ID {
		a.LeaveGroup()
	}
	a.Unlock()

	d.logger.Info(ctx, "group left", "account", a.UserName, "group", name)
	return protocol.Status(protocol.StatusOK)
}

// groupNew creates a group owned by the account.
func (d *Dispatcher) groupNew(ctx context.Context, req request, a *accounts.Account) protocol.Message {
	_, err := d.groups.Create(ctx, string(req.msg.Payload), a.ID)
	if err != nil {
		if !errors.Is(err, groups.ErrInvalidName) && !errors.Is(err, groups.ErrGroupExists) {
			d.logger.Error(ctx, "creating group failed", "account", a.UserName, "error", err)
		}
		return protocol.Status(statusOf(err))
	}
	return protocol.Status(protocol.StatusOK)
}

// requireMember returns ServerFail when membership cannot be determined and
// Forbidden when the account is not a member of name.
func (d *Dispatcher) requireMember(ctx context.Context, a *accounts.Account, name string) (protocol.Opcode, bool) {
	member, err := d.members.HasAccess(ctx, a.ID, name)
	if err != nil {
		d.logger.Error(ctx, "membership lookup failed", "account", a.UserName, "group", name, "error", err)
		return protocol.StatusServerFail, false
	}
	if !member {
		return protocol.StatusForbidden, false
	}
	return protocol.StatusOK, true
}
