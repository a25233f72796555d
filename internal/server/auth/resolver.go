package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// UserLookup finds a user by name. A missing user is reported as
// common.ErrorNotFound.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserLookupFunc func(ctx context.Context, username string) (*models.User, error)

func (f UserLookupFunc) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return f(ctx, username)
}

// Resolver turns a bearer token into the user it was issued for.
type Resolver struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewResolver(tokens TokenVerifier, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns the user named by the token's subject.
//
// A bad token, a token without a subject and a subject with no matching user
// all return common.ErrorUnauthorized. A lookup that fails for any other
// reason returns an error wrapping common.ErrorInternal.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	username, ok := claims.Subject()
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	user, err := r.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: user lookup: %w", common.ErrorInternal, err)
	}
	if user == nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
