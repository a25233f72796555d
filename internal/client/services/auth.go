package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the session locally.
//   - Restore: reload a stored, unexpired session; "" when there is none.
//   - Logout: forget the session locally and in the client.
//   - Me: fetch the current user from the server.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) (taskrpc.User, error)
	Login(ctx context.Context, username string, password []byte) error
	Restore(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (taskrpc.User, error)
	Ping(ctx context.Context) error
	Close() error
}

type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and
// local session database.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db, now: time.Now}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) (taskrpc.User, error) {
	u, err := a.client.Register(ctx, username, string(password))
	if err != nil {
		return taskrpc.User{}, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

// Login authenticates against the server and saves username, token and
// expiry in a single transaction.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	tok, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	expiresAt := a.now().Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUsername, username); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyAccessToken, tok.AccessToken); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyExpiresAt, expiresAt.Format(time.RFC3339))
	})
	if err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (string, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	username, err := repo.Get(ctx, metadata.KeyUsername)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token, err := repo.Get(ctx, metadata.KeyAccessToken)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	raw, err := repo.Get(ctx, metadata.KeyExpiresAt)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	expiresAt, perr := time.Parse(time.RFC3339, raw)
	if perr != nil || !a.now().Before(expiresAt) {
		return "", repo.Clear(ctx)
	}

	a.client.SetAccessToken(token)
	return username, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

func (a *authService) Me(ctx context.Context) (taskrpc.User, error) {
	return a.client.Me(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close() error {
	return a.client.Close()
}
