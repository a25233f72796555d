package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/storage"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// TaskService implements owner-scoped task CRUD and attachment URLs.
// A task id that belongs to another user is reported as common.ErrorNotFound.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   storage.Presigner
	log         logging.Logger
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, presigner storage.Presigner, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		presigner:   presigner,
		log:         log.With("module", "tasks"),
		now:         time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, userID int64, description string) (*models.Task, error) {
	d, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	t, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{UserID: userID, Description: d})
	if err != nil {
		return nil, internal(err)
	}

	s.log.Debug(ctx, "task created", "task_id", t.ID, "user_id", userID)
	return t, nil
}

// List returns a page of the user's tasks ordered by id. A non-positive
// limit selects DefaultListLimit; limits above MaxListLimit are clamped.
func (s *TaskService) List(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	if offset < 0 {
		return nil, validationError("skip cannot be negative")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	tasks, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, internal(err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, internal(err)
	}
	return t, nil
}

// Update applies the non-nil fields of upd. An empty update returns the task
// unchanged.
func (s *TaskService) Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	t, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, internal(err)
	}
	if upd.Empty() {
		return t, nil
	}

	if upd.Description != nil {
		d, err := normalizeDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		t.Description = d
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}

	updated, err := repo.Update(ctx, t)
	if err != nil {
		return nil, internal(err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.Tasks(s.db).Delete(ctx, userID, id); err != nil {
		return internal(err)
	}
	s.log.Debug(ctx, "task deleted", "task_id", id, "user_id", userID)
	return nil
}

// AttachmentUploadURL allocates a fresh storage key for the task's
// attachment and returns a presigned PUT URL for it. A previous attachment
// is replaced.
func (s *TaskService) AttachmentUploadURL(ctx context.Context, userID, id int64) (string, error) {
	repo := s.repomanager.Tasks(s.db)

	if _, err := repo.Get(ctx, userID, id); err != nil {
		return "", internal(err)
	}

	key := storage.NewObjectKey(s.now())
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return "", internal(err)
	}

	if err := repo.SetAttachmentKey(ctx, userID, id, key); err != nil {
		return "", internal(err)
	}

	return url, nil
}

// AttachmentDownloadURL returns a presigned GET URL for the task's
// attachment, or common.ErrorNotFound when it has none.
func (s *TaskService) AttachmentDownloadURL(ctx context.Context, userID, id int64) (string, error) {
	t, err := s.repomanager.Tasks(s.db).Get(ctx, userID, id)
	if err != nil {
		return "", internal(err)
	}
	if !t.HasAttachment() {
		return "", common.ErrorNotFound
	}

	url, err := s.presigner.PresignGet(ctx, t.AttachmentKey)
	if err != nil {
		return "", internal(err)
	}
	return url, nil
}

// internal passes NotFound through and marks everything else as internal.
func internal(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
