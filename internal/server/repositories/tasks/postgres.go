// Package tasks implements persistence of to-do tasks in PostgreSQL.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var key sql.NullString
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Completed, &key, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.AttachmentKey = key.String
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (user_id, description, completed)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, description, completed, attachment_key, created_at, updated_at
		 `

	t, err := scanTask(r.db.QueryRowContext(ctx, query, task.UserID, task.Description, task.Completed))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	query :=
		`SELECT id, user_id, description, completed, attachment_key, created_at, updated_at
		 FROM tasks
		 WHERE user_id = $1
		 ORDER BY id
		 OFFSET $2 LIMIT $3
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	query :=
		`SELECT id, user_id, description, completed, attachment_key, created_at, updated_at
		 FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

// Update writes description and completion of task and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET description = $1, completed = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, user_id, description, completed, attachment_key, created_at, updated_at
		 `

	t, err := scanTask(r.db.QueryRowContext(ctx, query, task.Description, task.Completed, task.ID, task.UserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) SetAttachmentKey(ctx context.Context, userID, id int64, key string) error {
	query :=
		`UPDATE tasks SET attachment_key = $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3
		 `

	return r.execOne(ctx, query, key, id, userID)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	return r.execOne(ctx, query, id, userID)
}

// DeleteByUser removes every task of the user and returns how many went.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	query := `DELETE FROM tasks WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
