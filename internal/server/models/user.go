// Package models defines server-side data models persisted in the database.
package models

import "time"

// PasswordHasher is the subset of password.Hasher the model needs.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// User is a registered account. The plaintext password is never stored on
// the model; only its hash is.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SetPassword hashes password with h and stores the result.
func (u *User) SetPassword(h PasswordHasher, password string) error {
	hash, err := h.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(h PasswordHasher, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return h.Verify(password, u.PasswordHash)
}
