package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/groupshare/internal/client"
	"github.com/dmitrijs2005/groupshare/internal/client/config"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
)

// session is the part of client.Client the commands use.
type session interface {
	Login(ctx context.Context, user, password string) error
	Logout(ctx context.Context) error
	Reauth(ctx context.Context, cookie string) error
	RequestCookie(ctx context.Context) (string, error)
	ListGroups(ctx context.Context) ([]string, error)
	UseGroup(ctx context.Context, name string) error
	JoinGroup(ctx context.Context, name string) error
	LeaveGroup(ctx context.Context, name string) error
	NewGroup(ctx context.Context, name string) error
	List(ctx context.Context) (client.Listing, error)
	Cd(ctx context.Context, name string) error
	Mkdir(ctx context.Context, name string) error
	DeleteFile(ctx context.Context, name string) error
	DeleteDir(ctx context.Context, name string) error
	Close() error
}

type App struct {
	config *config.Config
	api    session
	out    io.Writer

	user  string
	group string
	dir   []string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	api, err := client.Dial(dialCtx, c.ServerAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, api, os.Stdout), nil
}

func newApp(c *config.Config, api session, out io.Writer) *App {
	return &App{config: c, api: api, out: out}
}

// Run reads commands from stdin until EOF or exit.
func (app *App) Run(ctx context.Context) {
	defer app.api.Close()
	runREPL(ctx, app, os.Stdin)
}

func (app *App) status() string {
	switch {
	case app.user == "":
		return "not logged in"
	case app.group == "":
		return app.user
	default:
		return fmt.Sprintf("%s@%s:/%s", app.user, app.group, strings.Join(app.dir, "/"))
	}
}

func (app *App) printf(format string, args ...any) {
	fmt.Fprintf(app.out, format+"\n", args...)
}

var statusText = map[protocol.Opcode]string{
	protocol.StatusBadRequest:     "invalid request",
	protocol.StatusWrongPassword:  "wrong user name or password",
	protocol.StatusNotLoggedIn:    "not logged in",
	protocol.StatusLocked:         "account is locked",
	protocol.StatusAnotherClient:  "account is in use by another client",
	protocol.StatusAlreadyInGroup: "already a member",
	protocol.StatusGroupExists:    "group already exists",
	protocol.StatusAlreadyExists:  "already exists",
	protocol.StatusServerFail:     "server failure",
	protocol.StatusForbidden:      "not allowed",
	protocol.StatusNotFound:       "not found",
}

// report prints err in user terms and returns it unchanged.
func (app *App) report(err error) error {
	if err == nil {
		return nil
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		if text, ok := statusText[se.Status]; ok {
			app.printf("Error: %s", text)
			return err
		}
	}
	app.printf("Error: %v", err)
	return err
}

func (app *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, app.config.Timeout)
}
