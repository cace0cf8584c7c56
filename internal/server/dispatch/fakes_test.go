package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/cryptox"
	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/attempts"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeCatalog stands in for the SQL catalog: it records groups, memberships
// and locks in memory.
type fakeCatalog struct {
	mu      sync.Mutex
	nextID  int64
	names   map[int64]string
	members map[int64]map[string]bool
	locked  []int64
	err     error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{names: map[int64]string{}, members: map[int64]map[string]bool{}}
}

func (f *fakeCatalog) CreateGroup(_ context.Context, name, _ string, ownerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.names[f.nextID] = name
	f.addLocked(ownerID, name)
	return f.nextID, nil
}

func (f *fakeCatalog) HasAccess(_ context.Context, accountID int64, groupName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.members[accountID][groupName], nil
}

func (f *fakeCatalog) GroupsFor(_ context.Context, accountID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var names []string
	for name, ok := range f.members[accountID] {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeCatalog) AddMembership(_ context.Context, accountID, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.addLocked(accountID, f.names[groupID])
	return nil
}

func (f *fakeCatalog) RemoveMembership(_ context.Context, accountID, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.members[accountID], f.names[groupID])
	return nil
}

func (f *fakeCatalog) LockAccount(_ context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, accountID)
	return nil
}

func (f *fakeCatalog) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeCatalog) addLocked(accountID int64, name string) {
	if f.members[accountID] == nil {
		f.members[accountID] = map[string]bool{}
	}
	f.members[accountID][name] = true
}

const (
	password     = "secret"
	attemptLimit = 3
)

var (
	hashOnce           sync.Once
	passHash, passSalt []byte
)

func credentials() ([]byte, []byte) {
	hashOnce.Do(func() { passHash, passSalt = cryptox.HashPassword(password) })
	return passHash, passSalt
}

type harness struct {
	t       *testing.T
	d       *Dispatcher
	store   *accounts.Store
	catalog *fakeCatalog
	root    string

	mu  sync.Mutex
	now time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hash, salt := credentials()

	root := t.TempDir()
	fs, err := storage.NewLocal(root)
	require.NoError(t, err)

	logger := logging.NewNopLogger()
	catalog := newFakeCatalog()
	store := accounts.NewStore([]models.Account{
		{ID: 1, UserName: "alice", PasswordHash: hash, PasswordSalt: salt},
		{ID: 2, UserName: "bob", PasswordHash: hash, PasswordSalt: salt},
		{ID: 3, UserName: "carol", PasswordHash: hash, PasswordSalt: salt, Locked: true},
	})

	h := &harness{
		t:       t,
		store:   store,
		catalog: catalog,
		root:    root,
		now:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.d = New(Config{
		Accounts:        store,
		Attempts:        attempts.NewTracker(attemptLimit, time.Hour, catalog, logger),
		Groups:          groups.NewDirectory(catalog, fs, logger, nil),
		Members:         catalog,
		Storage:         fs,
		SessionValidity: 24 * time.Hour,
		Logger:          logger,
		Now:             h.clock,
	})
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) do(conn uuid.UUID, op protocol.Opcode, payload string) protocol.Message {
	return h.d.Handle(context.Background(), conn, protocol.NewMessage(op, payload))
}

func (h *harness) expect(conn uuid.UUID, op protocol.Opcode, payload string, want protocol.Opcode) protocol.Message {
	h.t.Helper()
	resp := h.do(conn, op, payload)
	require.Equal(h.t, want, resp.Opcode, "%s %q", op, payload)
	return resp
}

// login authenticates a fresh connection as user.
func (h *harness) login(user string) uuid.UUID {
	h.t.Helper()
	conn := uuid.New()
	h.expect(conn, protocol.OpLogin, user+" "+password, protocol.StatusOK)
	return conn
}

// inGroup logs user in, creates or joins group and makes it the working
// group.
func (h *harness) inGroup(user, group string) uuid.UUID {
	h.t.Helper()
	conn := h.login(user)
	if _, ok := h.d.groups.FindByName(group); !ok {
		h.expect(conn, protocol.OpGroupNew, group, protocol.StatusOK)
	} else if resp := h.do(conn, protocol.OpGroupJoin, group); resp.Opcode != protocol.StatusAlreadyInGroup {
		require.Equal(h.t, protocol.StatusOK, resp.Opcode)
	}
	h.expect(conn, protocol.OpGroupUse, group, protocol.StatusOK)
	return conn
}

func (h *harness) writeFile(rel string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(filepath.Join(h.root, filepath.FromSlash(rel)), []byte("data"), 0o660))
}

// drain issues continue requests until the queue reports empty.
func (h *harness) drain(conn uuid.UUID) []protocol.Message {
	h.t.Helper()
	var out []protocol.Message
	for i := 0; i < 1000; i++ {
		resp := h.do(conn, protocol.OpContinue, "")
		if resp.Opcode == protocol.StatusBadRequest {
			return out
		}
		out = append(out, resp)
	}
	h.t.Fatal("continuation queue never drained")
	return nil
}
