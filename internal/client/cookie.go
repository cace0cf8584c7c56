package client

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/groupshare/internal/filex"
)

const cookieLength = 32

func validCookie(s string) bool {
	if len(s) != cookieLength {
		return false
	}
	for _, r := range s {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return false
		}
	}
	return true
}

// SaveCookie stores cookie in path, readable only by the current user.
func SaveCookie(path, cookie string) error {
	if !validCookie(cookie) {
		return ErrInvalidCookie
	}
	return filex.WritePrivate(path, []byte(cookie))
}

// LoadCookie reads a cookie written by SaveCookie. A missing file returns an
// error satisfying errors.Is(err, fs.ErrNotExist).
func LoadCookie(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cookie: %w", err)
	}
	cookie := strings.TrimSpace(string(b))
	if !validCookie(cookie) {
		return "", fmt.Errorf("%s: %w", path, ErrInvalidCookie)
	}
	return cookie, nil
}
