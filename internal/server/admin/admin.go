// Package admin implements the account provisioning commands of cmd/admin.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/groupshare/internal/common"
	"github.com/dmitrijs2005/groupshare/internal/cryptox"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/accounts"
)

const maxUserName = 64

var (
	ErrUsage       = errors.New("usage: admin [flags] migrate | add-user <name> | unlock <name> | list")
	ErrInvalidUser = errors.New("user name must be 1-64 characters without spaces")
)

// PasswordFunc obtains the password for a new account.
type PasswordFunc func() (string, error)

type Tool struct {
	accounts accounts.Repository
	password PasswordFunc
	out      io.Writer
}

func New(repo accounts.Repository, password PasswordFunc, out io.Writer) *Tool {
	return &Tool{accounts: repo, password: password, out: out}
}

// Run executes one subcommand. The schema is migrated before Run is called,
// so "migrate" only reports success.
func (t *Tool) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch cmd, rest := args[0], args[1:]; {
	case cmd == "migrate" && len(rest) == 0:
		fmt.Fprintln(t.out, "schema is up to date")
		return nil
	case cmd == "add-user" && len(rest) == 1:
		return t.addUser(ctx, rest[0])
	case cmd == "unlock" && len(rest) == 1:
		return t.unlock(ctx, rest[0])
	case cmd == "list" && len(rest) == 0:
		return t.list(ctx)
	default:
		return ErrUsage
	}
}

func validUserName(name string) bool {
	return name != "" && len(name) <= maxUserName && !strings.ContainsAny(name, " \t\r\n")
}

func (t *Tool) addUser(ctx context.Context, name string) error {
	if !validUserName(name) {
		return ErrInvalidUser
	}

	password, err := t.password()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return errors.New("empty password")
	}

	hash, salt := cryptox.HashPassword(password)
	acc, err := t.accounts.Create(ctx, &models.Account{UserName: name, PasswordHash: hash, PasswordSalt: salt})
	if err != nil {
		return fmt.Errorf("add-user %s: %w", name, err)
	}

	fmt.Fprintf(t.out, "created account %s (id %d)\n", acc.UserName, acc.ID)
	return nil
}

func (t *Tool) unlock(ctx context.Context, name string) error {
	acc, err := t.accounts.GetByUserName(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("unlock %s: no such account", name)
	}
	if err != nil {
		return fmt.Errorf("unlock %s: %w", name, err)
	}

	if err := t.accounts.SetLocked(ctx, acc.ID, false); err != nil {
		return fmt.Errorf("unlock %s: %w", name, err)
	}

	fmt.Fprintf(t.out, "unlocked %s; restart the server to apply\n", name)
	return nil
}

func (t *Tool) list(ctx context.Context) error {
	list, err := t.accounts.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range list {
		state := "active"
		if a.Locked {
			state = "locked"
		}
		fmt.Fprintf(t.out, "%d\t%s\t%s\n", a.ID, a.UserName, state)
	}
	return nil
}
