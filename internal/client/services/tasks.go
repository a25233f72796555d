package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/filex"
	"github.com/dmitrijs2005/gophtasks/internal/netx"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
)

// ListPageSize is the page size used when listing all tasks.
const ListPageSize = 100

type TaskService interface {
	Add(ctx context.Context, description string) (taskrpc.Task, error)
	List(ctx context.Context) ([]taskrpc.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (taskrpc.Task, error)
	Edit(ctx context.Context, id int64, description string) (taskrpc.Task, error)
	Remove(ctx context.Context, id int64) error
	Attach(ctx context.Context, id int64, path string) error
	AttachmentURL(ctx context.Context, id int64) (string, error)
}

type taskService struct {
	client client.Client
	upload func(ctx context.Context, url string, body []byte) error
	read   func(path string) ([]byte, error)
}

func NewTaskService(c client.Client) TaskService {
	return &taskService{client: c, upload: netx.UploadToPresignedURL, read: filex.ReadAttachment}
}

func (s *taskService) Add(ctx context.Context, description string) (taskrpc.Task, error) {
	return s.client.CreateTask(ctx, description)
}

// List pages through the caller's tasks until a short page is returned.
func (s *taskService) List(ctx context.Context) ([]taskrpc.Task, error) {
	var all []taskrpc.Task
	for skip := 0; ; skip += ListPageSize {
		page, err := s.client.ListTasks(ctx, skip, ListPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < ListPageSize {
			return all, nil
		}
	}
}

func (s *taskService) SetCompleted(ctx context.Context, id int64, completed bool) (taskrpc.Task, error) {
	return s.client.UpdateTask(ctx, taskrpc.TaskPatch{ID: id, Completed: &completed})
}

func (s *taskService) Edit(ctx context.Context, id int64, description string) (taskrpc.Task, error) {
	return s.client.UpdateTask(ctx, taskrpc.TaskPatch{ID: id, Description: &description})
}

func (s *taskService) Remove(ctx context.Context, id int64) error {
	return s.client.DeleteTask(ctx, id)
}

// Attach reads the file first, so a bad path never asks the server for an
// upload URL.
func (s *taskService) Attach(ctx context.Context, id int64, path string) error {
	body, err := s.read(path)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}

	url, err := s.client.AttachmentUploadURL(ctx, id)
	if err != nil {
		return err
	}

	if err := s.upload(ctx, url, body); err != nil {
		return fmt.Errorf("upload attachment: %w", err)
	}
	return nil
}

func (s *taskService) AttachmentURL(ctx context.Context, id int64) (string, error) {
	return s.client.AttachmentDownloadURL(ctx, id)
}
