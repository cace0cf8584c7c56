package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/client"
	"github.com/dmitrijs2005/groupshare/internal/client/config"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "0123456789abcdefghijABCDEFGHIJxy"

type fakeSession struct {
	calls    []string
	password string
	errs     map[string]error
	listing  client.Listing
	groups   []string
	closed   bool
}

func (f *fakeSession) record(call string) error {
	f.calls = append(f.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return f.errs[name]
}

func (f *fakeSession) Login(_ context.Context, user, password string) error {
	f.password = password
	return f.record("login " + user)
}
func (f *fakeSession) Logout(context.Context) error { return f.record("logout") }
func (f *fakeSession) Reauth(_ context.Context, cookie string) error {
	return f.record("reauth " + cookie)
}
func (f *fakeSession) RequestCookie(context.Context) (string, error) {
	return testCookie, f.record("cookie")
}
func (f *fakeSession) ListGroups(context.Context) ([]string, error) {
	return f.groups, f.record("groups")
}
func (f *fakeSession) UseGroup(_ context.Context, n string) error   { return f.record("use " + n) }
func (f *fakeSession) JoinGroup(_ context.Context, n string) error  { return f.record("join " + n) }
func (f *fakeSession) LeaveGroup(_ context.Context, n string) error { return f.record("leave " + n) }
func (f *fakeSession) NewGroup(_ context.Context, n string) error   { return f.record("newgroup " + n) }
func (f *fakeSession) List(context.Context) (client.Listing, error) {
	return f.listing, f.record("ls")
}
func (f *fakeSession) Cd(_ context.Context, n string) error         { return f.record("cd " + n) }
func (f *fakeSession) Mkdir(_ context.Context, n string) error      { return f.record("mkdir " + n) }
func (f *fakeSession) DeleteFile(_ context.Context, n string) error { return f.record("rm " + n) }
func (f *fakeSession) DeleteDir(_ context.Context, n string) error  { return f.record("rmdir " + n) }
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestApp(t *testing.T, f *fakeSession) (*App, *bytes.Buffer) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { readPassword = orig })

	cfg := &config.Config{CookieFile: filepath.Join(t.TempDir(), "cookie"), Timeout: time.Second}
	out := &bytes.Buffer{}
	return newApp(cfg, f, out), out
}

func run(app *App, lines ...string) {
	runREPL(context.Background(), app, strings.NewReader(strings.Join(lines, "\n")))
}

func TestRunREPL_Session(t *testing.T) {
	f := &fakeSession{
		groups:  []string{"Alpha", "Team"},
		listing: client.Listing{Files: []string{"a.txt"}, Dirs: []string{"docs"}},
	}
	app, out := newTestApp(t, f)

	run(app,
		"help",
		"login alice",
		"groups",
		"newgroup My Team",
		"use My Team",
		"ls",
		"cd docs",
		"mkdir old stuff",
		"cd ..",
		"rm a.txt",
		"rmdir docs",
		"leave My Team",
		"logout",
		"foobar",
		"exit",
		"ls",
	)

	assert.Equal(t, []string{
		"login alice", "cookie", "groups", "newgroup My Team", "use My Team", "ls", "cd docs",
		"mkdir old stuff", "cd ..", "rm a.txt", "rmdir docs", "leave My Team", "logout",
	}, f.calls)
	assert.Equal(t, "s3cret", f.password)

	text := out.String()
	assert.Contains(t, text, "Available commands")
	assert.Contains(t, text, "Logged in as alice")
	assert.Contains(t, text, "gs> alice@My Team:/docs > ")
	assert.Contains(t, text, "  docs/")
	assert.Contains(t, text, "Unknown command: foobar")
	assert.Contains(t, text, "Bye!")

	saved, err := client.LoadCookie(app.config.CookieFile)
	require.NoError(t, err)
	assert.Equal(t, testCookie, saved)
}

func TestRunREPL_Errors(t *testing.T) {
	f := &fakeSession{errs: map[string]error{
		"login": &client.StatusError{Op: protocol.OpLogin, Status: protocol.StatusLocked},
		"cd":    &client.StatusError{Op: protocol.OpBrowseCd, Status: protocol.StatusNotFound},
		"mkdir": errors.New("connection reset"),
	}}
	app, out := newTestApp(t, f)

	run(app, "login", "login carol", "cd nowhere", "mkdir x", "use")

	text := out.String()
	assert.Contains(t, text, "Usage: login <user>")
	assert.Contains(t, text, "Error: account is locked")
	assert.Contains(t, text, "Error: not found")
	assert.Contains(t, text, "Error: connection reset")
	assert.Contains(t, text, "Usage: use <group>")
	assert.Equal(t, []string{"login carol", "cd nowhere", "mkdir x"}, f.calls)
	assert.Equal(t, "not logged in", app.status())
	assert.Empty(t, app.dir)
}

func TestResume(t *testing.T) {
	f := &fakeSession{}
	app, out := newTestApp(t, f)

	require.Error(t, app.Resume(context.Background()))
	assert.Contains(t, out.String(), "No saved session")

	require.NoError(t, client.SaveCookie(app.config.CookieFile, testCookie))
	require.NoError(t, app.Resume(context.Background()))
	assert.Equal(t, []string{"reauth " + testCookie}, f.calls)
}

func TestLeaveWorkingGroup(t *testing.T) {
	f := &fakeSession{}
	app, _ := newTestApp(t, f)
	app.user = "alice"

	ctx := context.Background()
	require.NoError(t, app.Use(ctx, "Team"))
	require.NoError(t, app.Cd(ctx, "docs"))
	require.NoError(t, app.Leave(ctx, "Other"))
	assert.Equal(t, "alice@Team:/docs", app.status())
	require.NoError(t, app.Leave(ctx, "Team"))
	assert.Equal(t, "alice", app.status())
}
