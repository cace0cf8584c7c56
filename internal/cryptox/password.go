// Package cryptox implements salted password hashing for account credentials.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/groupshare/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// HashPassword returns a fresh random salt and the Argon2id hash of password
// under that salt. Both must be stored to verify the password later.
func HashPassword(password string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	return DeriveKey([]byte(password), salt), salt
}

// VerifyPassword reports whether candidate hashes to hash under salt. The
// comparison is constant-time.
func VerifyPassword(candidate string, salt, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	pw := []byte(candidate)
	defer common.WipeByteArray(pw)
	return subtle.ConstantTimeCompare(DeriveKey(pw, salt), hash) == 1
}
