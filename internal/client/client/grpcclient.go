package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	conn *grpc.ClientConn
	api  *taskrpc.Client

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AuthorizationHeaderName, "Bearer "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects to the task service at endpointURL. Extra dial
// options are appended after the defaults (plaintext transport, token
// interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = taskrpc.NewClient(conn)
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token attached to subsequent calls.
// An empty token sends calls unauthenticated.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) (taskrpc.User, error) {
	u, err := s.api.Register(ctx, username, password)
	return u, s.mapError(err)
}

// Login authenticates and, on success, keeps the issued token for
// subsequent calls.
func (s *GRPCClient) Login(ctx context.Context, username, password string) (taskrpc.Token, error) {
	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		return taskrpc.Token{}, s.mapError(err)
	}
	s.SetAccessToken(tok.AccessToken)
	return tok, nil
}

func (s *GRPCClient) Me(ctx context.Context) (taskrpc.User, error) {
	u, err := s.api.Me(ctx)
	return u, s.mapError(err)
}

func (s *GRPCClient) CreateTask(ctx context.Context, description string) (taskrpc.Task, error) {
	t, err := s.api.CreateTask(ctx, description)
	return t, s.mapError(err)
}

func (s *GRPCClient) ListTasks(ctx context.Context, skip, limit int) ([]taskrpc.Task, error) {
	tasks, err := s.api.ListTasks(ctx, skip, limit)
	return tasks, s.mapError(err)
}

func (s *GRPCClient) GetTask(ctx context.Context, id int64) (taskrpc.Task, error) {
	t, err := s.api.GetTask(ctx, id)
	return t, s.mapError(err)
}

func (s *GRPCClient) UpdateTask(ctx context.Context, patch taskrpc.TaskPatch) (taskrpc.Task, error) {
	t, err := s.api.UpdateTask(ctx, patch)
	return t, s.mapError(err)
}

func (s *GRPCClient) DeleteTask(ctx context.Context, id int64) error {
	return s.mapError(s.api.DeleteTask(ctx, id))
}

func (s *GRPCClient) AttachmentUploadURL(ctx context.Context, id int64) (string, error) {
	u, err := s.api.AttachmentUploadURL(ctx, id)
	return u, s.mapError(err)
}

func (s *GRPCClient) AttachmentDownloadURL(ctx context.Context, id int64) (string, error) {
	u, err := s.api.AttachmentDownloadURL(ctx, id)
	return u, s.mapError(err)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	return s.mapError(s.api.Ping(ctx))
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
