package dispatch

import (
	"context"

	"github.com/dmitrijs2005/groupshare/internal/pathx"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
)

func (ws workspace) resolve(name string) string {
	return pathx.Resolve(ws.group.PathName, pathx.Join(ws.dir, name))
}

// browseList replies with the file count and queues the directory count,
// then every file name, then every directory name.
func (d *Dispatcher) browseList(ctx context.Context, _ request, ws workspace) protocol.Message {
	listing, err := d.fs.List(ctx, pathx.Resolve(ws.group.PathName, ws.dir))
	if err != nil {
		d.logger.Error(ctx, "listing directory failed", "group", ws.group.Name, "dir", ws.dir, "error", err)
		return protocol.Status(protocol.StatusServerFail)
	}

	items := make([]protocol.Message, 0, 1+len(listing.Files)+len(listing.Dirs))
	items = append(items, protocol.Count(protocol.OpDirCount, len(listing.Dirs)))
	for _, name := range listing.Files {
		items = append(items, protocol.NewMessage(protocol.OpFileName, name))
	}
	for _, name := range listing.Dirs {
		items = append(items, protocol.NewMessage(protocol.OpDirName, name))
	}

	a := ws.account
	a.Lock()
	a.Pending.Reset()
	a.Pending.Push(items...)
	a.Unlock()

	return protocol.Count(protocol.OpFileCount, len(listing.Files))
}

// browseCd changes the working directory. ".." goes up one level and is
// forbidden at the group root; "." stays put.
func (d *Dispatcher) browseCd(ctx context.Context, req request, ws workspace) protocol.Message {
	name := string(req.msg.Payload)
	if !pathx.ValidName(name) {
		return protocol.Status(protocol.StatusBadRequest)
	}

	var next string
	switch name {
	case pathx.Current:
		return protocol.Status(protocol.StatusOK)
	case pathx.Parent:
		parent, ok := pathx.Up(ws.dir)
		if !ok {
			return protocol.Status(protocol.StatusForbidden)
		}
		next = parent
	default:
		kind, err := d.fs.Stat(ctx, ws.resolve(name))
		if err != nil {
			return protocol.Status(statusOf(err))
		}
		if kind != storage.KindDir {
			return protocol.Status(protocol.StatusNotFound)
		}
		next = pathx.Join(ws.dir, name)
	}

	a := ws.account
	a.Lock()
	if a.WorkingGroup == ws.group {
		a.WorkingDir = next
	}
	a.Unlock()

	return protocol.Status(protocol.StatusOK)
}

func (d *Dispatcher) browseMkdir(ctx context.Context, req request, ws workspace) protocol.Message {
	name := string(req.msg.Payload)
	if !pathx.ValidEntry(name) {
		return protocol.Status(protocol.StatusBadRequest)
	}

	if err := d.fs.CreateDirectory(ctx, ws.resolve(name)); err != nil {
		return d.storageFailure(ctx, "mkdir", ws, name, err)
	}
	return protocol.Status(protocol.StatusOK)
}

func (d *Dispatcher) browseDeleteFile(ctx context.Context, req request, ws workspace) protocol.Message {
	name := string(req.msg.Payload)
	if !pathx.ValidEntry(name) {
		return protocol.Status(protocol.StatusBadRequest)
	}
	if !ws.group.IsOwner(ws.account.ID) {
		return protocol.Status(protocol.StatusForbidden)
	}

	if err := d.fs.DeleteFile(ctx, ws.resolve(name)); err != nil {
		return d.storageFailure(ctx, "delete file", ws, name, err)
	}
	d.logger.Info(ctx, "file deleted", "account", ws.account.UserName, "group", ws.group.Name, "path", pathx.Join(ws.dir, name))
	return protocol.Status(protocol.StatusOK)
}

func (d *Dispatcher) browseDeleteDir(ctx context.Context, req request, ws workspace) protocol.Message {
	name := string(req.msg.Payload)
	if !pathx.ValidEntry(name) {
		return protocol.Status(protocol.StatusBadRequest)
	}
	if !ws.group.IsOwner(ws.account.ID) {
		return protocol.Status(protocol.StatusForbidden)
	}

	if err := d.fs.RemoveDirectory(ctx, ws.resolve(name)); err != nil {
		return d.storageFailure(ctx, "delete directory", ws, name, err)
	}
	d.logger.Info(ctx, "directory deleted", "account", ws.account.UserName, "group", ws.group.Name, "path", pathx.Join(ws.dir, name))
	return protocol.Status(protocol.StatusOK)
}

func (d *Dispatcher) storageFailure(ctx context.Context, op string, ws workspace, name string, err error) protocol.Message {
	status := statusOf(err)
	if status == protocol.StatusServerFail {
		d.logger.Error(ctx, op+" failed", "group", ws.group.Name, "path", pathx.Join(ws.dir, name), "error", err)
	}
	return protocol.Status(status)
}
