package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository persists tasks. Every lookup is scoped by owner: a task id
// belonging to another user behaves exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error)
	Get(ctx context.Context, userID, id int64) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	SetAttachmentKey(ctx context.Context, userID, id int64, key string) error
	Delete(ctx context.Context, userID, id int64) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
