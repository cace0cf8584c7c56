package client

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groupshare", "cookie")
	cookie := "0123456789abcdefghijABCDEFGHIJxy"

	require.NoError(t, SaveCookie(path, cookie))
	got, err := LoadCookie(path)
	require.NoError(t, err)
	assert.Equal(t, cookie, got)
}

func TestLoadCookie_Missing(t *testing.T) {
	_, err := LoadCookie(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadCookie_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie")
	require.NoError(t, os.WriteFile(path, []byte("not a cookie\n"), 0o600))

	_, err := LoadCookie(path)
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestSaveCookie_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie")
	assert.ErrorIs(t, SaveCookie(path, "short"), ErrInvalidCookie)
	assert.ErrorIs(t, SaveCookie(path, "0123456789abcdefghijABCDEFGHIJ-!"), ErrInvalidCookie)

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
