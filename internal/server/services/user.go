// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and account removal.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
)

// TokenIssuer is the part of auth.TokenManager needed to mint access tokens.
type TokenIssuer interface {
	Issue(claims auth.Claims, ttl time.Duration) (string, error)
	DefaultTTL() time.Duration
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// UserService provides account operations:
// - Register: validate and create users
// - Login: verify credentials and mint an access token
// - DeleteAccount: remove a user together with all of their tasks
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      models.PasswordHasher
	tokens      TokenIssuer
	log         logging.Logger

	// dummyHash is compared against for unknown users so that a login
	// attempt costs the same whether or not the username exists.
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher models.PasswordHasher, tokens TokenIssuer, log logging.Logger) (*UserService, error) {
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	dummy, err := hasher.Hash(seed)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		log:         log.With("module", "users"),
		dummyHash:   dummy,
	}, nil
}

// Register validates the credentials and creates a new user. A taken
// username yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user := &models.User{Username: username}
	if err := user.SetPassword(s.hasher, password); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: error creating user: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and returns a bearer token whose subject is
// the username. Unknown users and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (*Token, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !user.CheckPassword(s.hasher, password) {
		return nil, common.ErrorUnauthorized
	}

	ttl := s.tokens.DefaultTTL()
	access, err := s.tokens.Issue(auth.Claims{auth.ClaimSubject: user.Username}, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	return &Token{AccessToken: access, TokenType: common.TokenTypeBearer, ExpiresIn: ttl}, nil
}

// GetUserByUsername looks a user up for the identity resolver.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByUsername(ctx, username)
}

// DeleteAccount removes the user's tasks and then the user in a single
// transaction.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	var removed int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Tasks(tx).DeleteByUser(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "account deleted", "user_id", userID, "tasks_removed", removed)
	return nil
}
