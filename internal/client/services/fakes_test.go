package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	token    string
	closed   bool
	tasks    map[int64]taskrpc.Task
	nextID   int64
	pages    [][]taskrpc.Task
	listArgs [][2]int
	patches  []taskrpc.TaskPatch
	loginTok taskrpc.Token
	err      error
	urlCalls int
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{tasks: map[int64]taskrpc.Task{}, nextID: 1}
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) SetAccessToken(token string) { f.token = token }

func (f *fakeClient) Register(_ context.Context, username, _ string) (taskrpc.User, error) {
	if f.err != nil {
		return taskrpc.User{}, f.err
	}
	return taskrpc.User{ID: 1, Username: username}, nil
}

func (f *fakeClient) Login(_ context.Context, _, _ string) (taskrpc.Token, error) {
	if f.err != nil {
		return taskrpc.Token{}, f.err
	}
	f.token = f.loginTok.AccessToken
	return f.loginTok, nil
}

func (f *fakeClient) Me(context.Context) (taskrpc.User, error) {
	if f.token == "" {
		return taskrpc.User{}, client.ErrUnauthorized
	}
	return taskrpc.User{ID: 1, Username: "alice"}, nil
}

func (f *fakeClient) CreateTask(_ context.Context, description string) (taskrpc.Task, error) {
	t := taskrpc.Task{ID: f.nextID, UserID: 1, Description: description}
	f.tasks[t.ID] = t
	f.nextID++
	return t, nil
}

func (f *fakeClient) ListTasks(_ context.Context, skip, limit int) ([]taskrpc.Task, error) {
	f.listArgs = append(f.listArgs, [2]int{skip, limit})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return nil, nil
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func (f *fakeClient) GetTask(_ context.Context, id int64) (taskrpc.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return taskrpc.Task{}, client.ErrNotFound
	}
	return t, nil
}

func (f *fakeClient) UpdateTask(_ context.Context, p taskrpc.TaskPatch) (taskrpc.Task, error) {
	f.patches = append(f.patches, p)
	t, ok := f.tasks[p.ID]
	if !ok {
		return taskrpc.Task{}, client.ErrNotFound
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	f.tasks[p.ID] = t
	return t, nil
}

func (f *fakeClient) DeleteTask(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeClient) AttachmentUploadURL(_ context.Context, id int64) (string, error) {
	f.urlCalls++
	if _, ok := f.tasks[id]; !ok {
		return "", client.ErrNotFound
	}
	return "http://s3/put", nil
}

func (f *fakeClient) AttachmentDownloadURL(_ context.Context, id int64) (string, error) {
	if _, ok := f.tasks[id]; !ok {
		return "", client.ErrNotFound
	}
	return "http://s3/get", nil
}

func (f *fakeClient) Ping(context.Context) error { return f.err }

func newSessionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
