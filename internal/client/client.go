package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/pathx"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
)

// Listing is the content of the working directory.
type Listing struct {
	Files []string
	Dirs  []string
}

// Client is safe for concurrent use; requests are serialized because every
// response belongs to the request before it.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the server at address.
func Dial(ctx context.Context, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// exchange sends one frame and reads one frame. The caller holds c.mu.
func (c *Client) exchange(ctx context.Context, op protocol.Opcode, payload string) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Message{}, err
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return protocol.Message{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := protocol.WriteMessage(c.conn, protocol.NewMessage(op, payload)); err != nil {
		return protocol.Message{}, c.wrap(ctx, op, err)
	}
	resp, err := protocol.ReadMessage(c.conn)
	if err != nil {
		return protocol.Message{}, c.wrap(ctx, op, err)
	}
	return resp, nil
}

func (c *Client) wrap(ctx context.Context, op protocol.Opcode, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Client) call(ctx context.Context, op protocol.Opcode, payload string) (protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchange(ctx, op, payload)
}

// expectOK fails with a StatusError unless the response is OK.
func (c *Client) expectOK(ctx context.Context, op protocol.Opcode, payload string) error {
	resp, err := c.call(ctx, op, payload)
	if err != nil {
		return err
	}
	return checkOK(op, resp)
}

func checkOK(op protocol.Opcode, resp protocol.Message) error {
	if resp.Opcode == protocol.StatusOK {
		return nil
	}
	if resp.Opcode.IsStatus() {
		return &StatusError{Op: op, Status: resp.Opcode}
	}
	return fmt.Errorf("%s: %w: %s", op, ErrUnexpectedResponse, resp.Opcode)
}

// expect returns resp if it carries want, a StatusError if the server sent a
// status instead, and ErrUnexpectedResponse otherwise.
func expect(op protocol.Opcode, resp protocol.Message, want protocol.Opcode) (protocol.Message, error) {
	switch {
	case resp.Opcode == want:
		return resp, nil
	case resp.Opcode.IsStatus():
		return resp, &StatusError{Op: op, Status: resp.Opcode}
	default:
		return resp, fmt.Errorf("%s: %w: got %s, want %s", op, ErrUnexpectedResponse, resp.Opcode, want)
	}
}

func count(op protocol.Opcode, resp protocol.Message) (int, error) {
	n, err := strconv.Atoi(resp.Text())
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: %w: bad count %q", op, ErrUnexpectedResponse, resp.Text())
	}
	return n, nil
}

// next asks for one queued item of kind want.
func (c *Client) next(ctx context.Context, op, want protocol.Opcode) (protocol.Message, error) {
	resp, err := c.exchange(ctx, protocol.OpContinue, "")
	if err != nil {
		return resp, err
	}
	return expect(op, resp, want)
}

func (c *Client) Login(ctx context.Context, user, password string) error {
	return c.expectOK(ctx, protocol.OpLogin, user+" "+password)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.expectOK(ctx, protocol.OpLogout, "")
}

// Reauth resumes the session identified by cookie.
func (c *Client) Reauth(ctx context.Context, cookie string) error {
	return c.expectOK(ctx, protocol.OpReauth, cookie)
}

// RequestCookie asks the server for a fresh reauthentication cookie. Any
// earlier cookie stops working.
func (c *Client) RequestCookie(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, protocol.OpRequestCookie, "")
	if err != nil {
		return "", err
	}
	if err := checkOK(protocol.OpRequestCookie, resp); err != nil {
		return "", err
	}
	cookie := resp.Text()
	if !validCookie(cookie) {
		return "", fmt.Errorf("%s: %w", protocol.OpRequestCookie, ErrInvalidCookie)
	}
	return cookie, nil
}

// ListGroups returns the names of the groups the account belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	op := protocol.OpGroupList

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.exchange(ctx, op, "")
	if err != nil {
		return nil, err
	}
	if resp, err = expect(op, resp, protocol.OpGroupCount); err != nil {
		return nil, err
	}
	n, err := count(op, resp)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item, err := c.next(ctx, op, protocol.OpGroupName)
		if err != nil {
			return nil, err
		}
		names = append(names, item.Text())
	}
	return names, nil
}

func (c *Client) UseGroup(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpGroupUse, name)
}

func (c *Client) JoinGroup(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpGroupJoin, name)
}

func (c *Client) LeaveGroup(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpGroupLeave, name)
}

// NewGroup creates a group owned by the logged-in account. The name is
// checked locally before anything is sent.
func (c *Client) NewGroup(ctx context.Context, name string) error {
	if !pathx.ValidEntry(name) {
		return fmt.Errorf("%s %q: %w", protocol.OpGroupNew, name, ErrInvalidName)
	}
	return c.expectOK(ctx, protocol.OpGroupNew, name)
}

// List returns the files and directories of the working directory.
func (c *Client) List(ctx context.Context) (Listing, error) {
	op := protocol.OpBrowseList

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.exchange(ctx, op, "")
	if err != nil {
		return Listing{}, err
	}
	if resp, err = expect(op, resp, protocol.OpFileCount); err != nil {
		return Listing{}, err
	}
	files, err := count(op, resp)
	if err != nil {
		return Listing{}, err
	}

	resp, err = c.next(ctx, op, protocol.OpDirCount)
	if err != nil {
		return Listing{}, err
	}
	dirs, err := count(op, resp)
	if err != nil {
		return Listing{}, err
	}

	out := Listing{Files: make([]string, 0, files), Dirs: make([]string, 0, dirs)}
	for i := 0; i < files; i++ {
		item, err := c.next(ctx, op, protocol.OpFileName)
		if err != nil {
			return Listing{}, err
		}
		out.Files = append(out.Files, item.Text())
	}
	for i := 0; i < dirs; i++ {
		item, err := c.next(ctx, op, protocol.OpDirName)
		if err != nil {
			return Listing{}, err
		}
		out.Dirs = append(out.Dirs, item.Text())
	}
	return out, nil
}

func (c *Client) Cd(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpBrowseCd, name)
}

func (c *Client) Mkdir(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpBrowseMkdir, name)
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpBrowseDeleteFile, name)
}

func (c *Client) DeleteDir(ctx context.Context, name string) error {
	return c.expectOK(ctx, protocol.OpBrowseDeleteDir, name)
}
