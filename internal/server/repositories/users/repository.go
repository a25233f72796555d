package users

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
