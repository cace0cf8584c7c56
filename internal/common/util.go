package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphanumeric is the alphabet used for session cookies.
const Alphanumeric = "1234567890ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// MakeRandString returns a string of length n drawn uniformly from alphabet
// using crypto/rand.
func MakeRandString(n int, alphabet string) (string, error) {
	if len(alphabet) == 0 {
		return "", fmt.Errorf("empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateRandByteArray returns size random bytes. It panics if the system
// random source fails, which only happens on a broken platform.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
