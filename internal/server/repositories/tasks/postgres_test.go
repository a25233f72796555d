package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var taskCols = []string{"id", "user_id", "description", "completed", "attachment_key", "created_at", "updated_at"}

var ts = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tasks\s*\(user_id,\s*description,\s*completed\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,.*updated_at\s*$`).
		WithArgs(int64(5), "Buy milk", false).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(1), int64(5), "Buy milk", false, nil, ts, ts))

	got, err := repo.Create(context.Background(), &models.Task{UserID: 5, Description: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, &models.Task{ID: 1, UserID: 5, Description: "Buy milk", CreatedAt: ts, UpdatedAt: ts}, got)
	assert.False(t, got.HasAttachment())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+tasks`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Task{UserID: 5, Description: "x"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id\s+OFFSET\s+\$2\s+LIMIT\s+\$3\s*$`
	rows := sqlmock.NewRows(taskCols).
		AddRow(int64(1), int64(5), "one", false, nil, ts, ts).
		AddRow(int64(2), int64(5), "two", true, "tasks/2025/3/1/abc", ts, ts)
	mock.ExpectQuery(q).WithArgs(int64(5), 0, 100).WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 5, 0, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Description)
	assert.True(t, got[1].Completed)
	assert.Equal(t, "tasks/2025/3/1/abc", got[1].AttachmentKey)
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+tasks`).WillReturnRows(sqlmock.NewRows(taskCols))

	got, err := repo.ListByUser(context.Background(), 5, 10, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(`FROM\s+tasks`).WillReturnError(errors.New("boom"))

		_, err := repo.ListByUser(context.Background(), 5, 0, 1)
		assert.Regexp(t, `db error: .*boom`, err.Error())
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows(taskCols).AddRow("not-a-number", int64(5), "x", false, nil, ts, ts)
		mock.ExpectQuery(`FROM\s+tasks`).WillReturnRows(rows)

		_, err := repo.ListByUser(context.Background(), 5, 0, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error")
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows(taskCols).
			AddRow(int64(1), int64(5), "x", false, nil, ts, ts).
			RowError(0, errors.New("row-err"))
		mock.ExpectQuery(`FROM\s+tasks`).WillReturnRows(rows)

		_, err := repo.ListByUser(context.Background(), 5, 0, 1)
		assert.Regexp(t, `db error: .*row-err`, err.Error())
	})
}

func TestGet(t *testing.T) {
	q := `(?s)^SELECT\s+id,.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs(int64(9), int64(5)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(9), int64(5), "x", false, nil, ts, ts))

		got, err := repo.Get(context.Background(), 5, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
	})

	t.Run("other owner", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs(int64(9), int64(6)).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 6, 9)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

		_, err := repo.Get(context.Background(), 5, 9)
		assert.Regexp(t, `db error: .*boom`, err.Error())
	})
}

func TestUpdate(t *testing.T) {
	q := `(?s)^UPDATE\s+tasks\s+SET\s+description\s*=\s*\$1,\s*completed\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$3\s+AND\s+user_id\s*=\s*\$4\s+RETURNING`

	t.Run("updated", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		later := ts.Add(time.Minute)
		mock.ExpectQuery(q).WithArgs("new", true, int64(9), int64(5)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(9), int64(5), "new", true, nil, ts, later))

		got, err := repo.Update(context.Background(), &models.Task{ID: 9, UserID: 5, Description: "new", Completed: true})
		require.NoError(t, err)
		assert.Equal(t, later, got.UpdatedAt)
		assert.True(t, got.Completed)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(context.Background(), &models.Task{ID: 9, UserID: 5})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

		_, err := repo.Update(context.Background(), &models.Task{ID: 9, UserID: 5})
		assert.Regexp(t, `db error: .*boom`, err.Error())
	})
}

func TestSetAttachmentKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+tasks\s+SET\s+attachment_key\s*=\s*\$1,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s*$`
	mock.ExpectExec(q).WithArgs("tasks/k", int64(9), int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tasks/k", int64(9), int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetAttachmentKey(context.Background(), 5, 9, "tasks/k"))
	assert.ErrorIs(t, repo.SetAttachmentKey(context.Background(), 6, 9, "tasks/k"), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	q := `^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	tests := []struct {
		result  sql.Result
		execErr error
		wantErr error
		name    string
		wantMsg string
	}{
		{name: "deleted", result: sqlmock.NewResult(0, 1)},
		{name: "missing", result: sqlmock.NewResult(0, 0), wantErr: common.ErrorNotFound},
		{name: "exec error", execErr: errors.New("boom"), wantMsg: `db error: .*boom`},
		{name: "rows affected error", result: sqlmock.NewErrorResult(errors.New("rows-err")), wantMsg: `db error: .*rows-err`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(q).WithArgs(int64(9), int64(5))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Delete(context.Background(), 5, 9)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Regexp(t, tt.wantMsg, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q).WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs(int64(7)).WillReturnError(errors.New("boom"))

	n, err := repo.DeleteByUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.DeleteByUser(context.Background(), 6)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.DeleteByUser(context.Background(), 7)
	assert.Regexp(t, `db error: .*boom`, err.Error())
}
