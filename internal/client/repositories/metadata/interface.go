package metadata

import (
	"context"
)

// Well-known keys of the local session.
const (
	KeyUsername    = "username"
	KeyAccessToken = "access_token"
	KeyExpiresAt   = "expires_at"
)

// Repository is a small key/value store in the local session database.
// Get returns common.ErrorNotFound for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
