// Package models defines server-side records persisted in the database.
package models

// Account is a stored user account. The password is kept only as a salted
// argon2id hash.
type Account struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	PasswordSalt []byte
	Locked       bool
}
