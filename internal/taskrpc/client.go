package taskrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed client for gophtasks.v1.TaskService. Authentication
// metadata is expected to be added by an interceptor on cc.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in any) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (User, error) {
	out, err := c.invoke(ctx, MethodRegister, Credentials{Username: username, Password: password}.Struct())
	if err != nil {
		return User{}, err
	}
	return UserFrom(out)
}

func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	out, err := c.invoke(ctx, MethodLogin, Credentials{Username: username, Password: password}.Struct())
	if err != nil {
		return Token{}, err
	}
	return TokenFrom(out)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	out, err := c.invoke(ctx, MethodMe, &emptypb.Empty{})
	if err != nil {
		return User{}, err
	}
	return UserFrom(out)
}

func (c *Client) CreateTask(ctx context.Context, description string) (Task, error) {
	out, err := c.invoke(ctx, MethodCreateTask, NewTask(description))
	if err != nil {
		return Task{}, err
	}
	return TaskFrom(out)
}

func (c *Client) ListTasks(ctx context.Context, skip, limit int) ([]Task, error) {
	out, err := c.invoke(ctx, MethodListTasks, ListRequest{Skip: skip, Limit: limit}.Struct())
	if err != nil {
		return nil, err
	}
	return TaskListFrom(out)
}

func (c *Client) GetTask(ctx context.Context, id int64) (Task, error) {
	out, err := c.invoke(ctx, MethodGetTask, TaskID(id))
	if err != nil {
		return Task{}, err
	}
	return TaskFrom(out)
}

func (c *Client) UpdateTask(ctx context.Context, patch TaskPatch) (Task, error) {
	out, err := c.invoke(ctx, MethodUpdateTask, patch.Struct())
	if err != nil {
		return Task{}, err
	}
	return TaskFrom(out)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.cc.Invoke(ctx, MethodDeleteTask, TaskID(id), new(emptypb.Empty))
}

func (c *Client) AttachmentUploadURL(ctx context.Context, id int64) (string, error) {
	out, err := c.invoke(ctx, MethodAttachmentUploadURL, TaskID(id))
	if err != nil {
		return "", err
	}
	return URLFrom(out)
}

func (c *Client) AttachmentDownloadURL(ctx context.Context, id int64) (string, error) {
	out, err := c.invoke(ctx, MethodAttachmentDownloadURL, TaskID(id))
	if err != nil {
		return "", err
	}
	return URLFrom(out)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.cc.Invoke(ctx, MethodPing, &emptypb.Empty{}, new(emptypb.Empty))
}
