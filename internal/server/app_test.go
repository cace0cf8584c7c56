package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/client"
	"github.com/dmitrijs2005/groupshare/internal/cryptox"
	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/catalog"
	"github.com/dmitrijs2005/groupshare/internal/server/config"
	"github.com/dmitrijs2005/groupshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := &config.Config{}
	c.LoadDefaults()
	c.ListenAddr = freeAddr(t)
	c.DatabaseDSN = filepath.Join(dir, "groupshare.db")
	c.StorageRoot = filepath.Join(dir, "storage")
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "oracle"

	_, err := newApp(context.Background(), c, logging.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewApp_BadDatabase(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDSN = filepath.Join(t.TempDir(), "missing", "dir", "db")

	_, err := newApp(context.Background(), c, logging.NewNopLogger())
	require.Error(t, err)
}

func TestApp_ServesUntilCancelled(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	c.MetricsAddr = freeAddr(t)

	db, rm, err := OpenDatabase(ctx, c)
	require.NoError(t, err)
	hash, salt := cryptox.HashPassword("pw")
	_, err = rm.Accounts(db).Create(ctx, &models.Account{UserName: "alice", PasswordHash: hash, PasswordSalt: salt})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	app, err := newApp(ctx, c, logging.NewNopLogger())
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		app.Run(runCtx)
		close(stopped)
	}()

	var cl *client.Client
	require.Eventually(t, func() bool {
		cl, err = client.Dial(ctx, c.ListenAddr)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	defer cl.Close()

	opCtx, opCancel := context.WithTimeout(ctx, 5*time.Second)
	defer opCancel()
	require.NoError(t, cl.Login(opCtx, "alice", "pw"))
	require.NoError(t, cl.NewGroup(opCtx, "Team"))
	assert.True(t, client.IsStatus(cl.NewGroup(opCtx, "Team"), protocol.StatusGroupExists))

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", c.MetricsAddr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "groupshare_requests_total"))

	cancel()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}

	// the group outlives the process
	db, rm, err = OpenDatabase(ctx, c)
	require.NoError(t, err)
	defer db.Close()
	loaded, err := catalog.New(db, rm).LoadGroups(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Team", loaded[0].Name)
}
