package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/groupshare/internal/client"
	"github.com/dmitrijs2005/groupshare/internal/pathx"
)

var errUsage = errors.New("usage")

func (app *App) usage(text string) error {
	app.printf("Usage: %s", text)
	return errUsage
}

// Login authenticates user and stores a fresh cookie for later resume.
func (app *App) Login(ctx context.Context, user string) error {
	if user == "" {
		return app.usage("login <user>")
	}
	password, err := GetPassword(app.out)
	if err != nil {
		return app.report(err)
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.Login(ctx, user, password); err != nil {
		return app.report(err)
	}
	app.user, app.group, app.dir = user, "", nil
	app.printf("Logged in as %s", user)

	cookie, err := app.api.RequestCookie(ctx)
	if err == nil {
		err = client.SaveCookie(app.config.CookieFile, cookie)
	}
	if err != nil {
		app.printf("Warning: session cookie not saved: %v", err)
	}
	return nil
}

// Resume reauthenticates with the cookie saved by an earlier login.
func (app *App) Resume(ctx context.Context) error {
	cookie, err := client.LoadCookie(app.config.CookieFile)
	if errors.Is(err, fs.ErrNotExist) {
		app.printf("No saved session")
		return err
	}
	if err != nil {
		return app.report(err)
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.Reauth(ctx, cookie); err != nil {
		return app.report(err)
	}
	app.user, app.group, app.dir = "(resumed)", "", nil
	app.printf("Session resumed")
	return nil
}

func (app *App) Logout(ctx context.Context) error {
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.Logout(ctx); err != nil {
		return app.report(err)
	}
	app.user, app.group, app.dir = "", "", nil
	app.printf("Logged out")
	return nil
}

func (app *App) Groups(ctx context.Context) error {
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	names, err := app.api.ListGroups(ctx)
	if err != nil {
		return app.report(err)
	}
	if len(names) == 0 {
		app.printf("No groups")
	}
	for _, n := range names {
		app.printf("  %s", n)
	}
	return nil
}

func (app *App) Use(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("use <group>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.UseGroup(ctx, name); err != nil {
		return app.report(err)
	}
	app.group, app.dir = name, nil
	return nil
}

func (app *App) Join(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("join <group>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.JoinGroup(ctx, name); err != nil {
		return app.report(err)
	}
	app.printf("Joined %s", name)
	return nil
}

func (app *App) Leave(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("leave <group>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.LeaveGroup(ctx, name); err != nil {
		return app.report(err)
	}
	if app.group == name {
		app.group, app.dir = "", nil
	}
	app.printf("Left %s", name)
	return nil
}

func (app *App) NewGroup(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("newgroup <name>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.NewGroup(ctx, name); err != nil {
		return app.report(err)
	}
	app.printf("Created %s", name)
	return nil
}

func (app *App) List(ctx context.Context) error {
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	listing, err := app.api.List(ctx)
	if err != nil {
		return app.report(err)
	}
	for _, d := range listing.Dirs {
		app.printf("  %s/", d)
	}
	for _, f := range listing.Files {
		app.printf("  %s", f)
	}
	app.printf("%d director(ies), %d file(s)", len(listing.Dirs), len(listing.Files))
	return nil
}

func (app *App) Cd(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("cd <dir>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.api.Cd(ctx, name); err != nil {
		return app.report(err)
	}
	switch name {
	case pathx.Current:
	case pathx.Parent:
		if len(app.dir) > 0 {
			app.dir = app.dir[:len(app.dir)-1]
		}
	default:
		app.dir = append(app.dir, name)
	}
	return nil
}

func (app *App) Mkdir(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("mkdir <dir>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()
	return app.report(app.api.Mkdir(ctx, name))
}

func (app *App) Remove(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("rm <file>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()
	return app.report(app.api.DeleteFile(ctx, name))
}

func (app *App) RemoveDir(ctx context.Context, name string) error {
	if name == "" {
		return app.usage("rmdir <dir>")
	}
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()
	return app.report(app.api.DeleteDir(ctx, name))
}
