package client

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
)

type Client interface {
	Close() error
	SetAccessToken(token string)
	Register(ctx context.Context, username, password string) (taskrpc.User, error)
	Login(ctx context.Context, username, password string) (taskrpc.Token, error)
	Me(ctx context.Context) (taskrpc.User, error)
	CreateTask(ctx context.Context, description string) (taskrpc.Task, error)
	ListTasks(ctx context.Context, skip, limit int) ([]taskrpc.Task, error)
	GetTask(ctx context.Context, id int64) (taskrpc.Task, error)
	UpdateTask(ctx context.Context, patch taskrpc.TaskPatch) (taskrpc.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	AttachmentUploadURL(ctx context.Context, id int64) (string, error)
	AttachmentDownloadURL(ctx context.Context, id int64) (string, error)
	Ping(ctx context.Context) error
}
