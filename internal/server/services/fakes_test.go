package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int64

	createErr error
	getErr    error
	deleteErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.byName[u.Username] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for name, u := range f.byName {
		if u.ID == id {
			delete(f.byName, name)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeTasksRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.Task
	nextID int64

	err       error
	updateErr error
	setKeyErr error
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{byID: map[int64]*models.Task{}}
}

func (f *fakeTasksRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	cp := *t
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTasksRepo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := make([]*models.Task, 0)
	for _, t := range f.byID {
		if t.UserID == userID {
			cp := *t
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*models.Task{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (f *fakeTasksRepo) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	cur, ok := f.byID[t.ID]
	if !ok || cur.UserID != t.UserID {
		return nil, common.ErrorNotFound
	}
	cur.Description = t.Description
	cur.Completed = t.Completed
	cur.UpdatedAt = time.Now()
	cp := *cur
	return &cp, nil
}

func (f *fakeTasksRepo) SetAttachmentKey(ctx context.Context, userID, id int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setKeyErr != nil {
		return f.setKeyErr
	}
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	t.AttachmentKey = key
	return nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTasksRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, t := range f.byID {
		if t.UserID == userID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), t: newFakeTasksRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository           { return m.t }

type fakePresigner struct {
	putErr error
	getErr error
	keys   []string
}

func (p *fakePresigner) PresignPut(ctx context.Context, key string) (string, error) {
	if p.putErr != nil {
		return "", p.putErr
	}
	p.keys = append(p.keys, key)
	return "https://store.local/put/" + key, nil
}

func (p *fakePresigner) PresignGet(ctx context.Context, key string) (string, error) {
	if p.getErr != nil {
		return "", p.getErr
	}
	return "https://store.local/get/" + key, nil
}

type recordingManager struct {
	*fakeRepoManager
	tasks tasks.Repository
}

func (m *recordingManager) Tasks(db dbx.DBTX) tasks.Repository { return m.tasks }
