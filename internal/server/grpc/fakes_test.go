package grpc

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]*models.User
	pass   map[string]string
	tokens *auth.TokenManager
	err    error
}

func newFakeUsers(tm *auth.TokenManager) *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, pass: map[string]string{}, tokens: tm}
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters long", common.ErrorValidation)
	}
	if _, ok := f.users[username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := &models.User{ID: int64(len(f.users) + 1), Username: username}
	f.users[username] = u
	f.pass[username] = password
	return u, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pass[username]; !ok || p != password {
		return nil, common.ErrorUnauthorized
	}
	tok, err := f.tokens.Issue(auth.Claims{auth.ClaimSubject: username}, 0)
	if err != nil {
		return nil, err
	}
	return &services.Token{AccessToken: tok, TokenType: common.TokenTypeBearer, ExpiresIn: f.tokens.DefaultTTL()}, nil
}

func (f *fakeUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeTasks struct {
	mu     sync.Mutex
	tasks  map[int64]*models.Task
	nextID int64
	err    error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[int64]*models.Task{}}
}

func (f *fakeTasks) Create(ctx context.Context, userID int64, description string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d := strings.TrimSpace(description)
	if d == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", common.ErrorValidation)
	}
	f.nextID++
	t := &models.Task{ID: f.nextID, UserID: userID, Description: d, CreatedAt: time.Now()}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) List(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if limit <= 0 {
		limit = services.DefaultListLimit
	}
	out := []*models.Task{}
	for id := int64(1); id <= f.nextID; id++ {
		if t, ok := f.tasks[id]; ok && t.UserID == userID {
			out = append(out, t)
		}
	}
	offset = min(offset, len(out))
	out = out[offset:]
	return out[:min(limit, len(out))], nil
}

func (f *fakeTasks) get(userID, id int64) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTasks) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(userID, id)
}

func (f *fakeTasks) Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	return t, nil
}

func (f *fakeTasks) Delete(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.get(userID, id); err != nil {
		return err
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) AttachmentUploadURL(ctx context.Context, userID, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.get(userID, id)
	if err != nil {
		return "", err
	}
	t.AttachmentKey = fmt.Sprintf("tasks/%d", id)
	return "https://store.local/put/" + t.AttachmentKey, nil
}

func (f *fakeTasks) AttachmentDownloadURL(ctx context.Context, userID, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.get(userID, id)
	if err != nil {
		return "", err
	}
	if !t.HasAttachment() {
		return "", common.ErrorNotFound
	}
	return "https://store.local/get/" + t.AttachmentKey, nil
}
