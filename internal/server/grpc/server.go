// Package grpc serves gophtasks.v1.TaskService over gRPC.
package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Token, error)
}

type TaskService interface {
	Create(ctx context.Context, userID int64, description string) (*models.Task, error)
	List(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error)
	Get(ctx context.Context, userID, id int64) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	AttachmentUploadURL(ctx context.Context, userID, id int64) (string, error)
	AttachmentDownloadURL(ctx context.Context, userID, id int64) (string, error)
}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type GRPCServer struct {
	address string
	users   UserService
	tasks   TaskService
	auth    Authenticator
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ts TaskService, auth Authenticator) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		tasks:   ts,
		auth:    auth,
	}
}

// NewServer builds the grpc.Server with the access token interceptor and
// the task service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.accessTokenInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)
	taskrpc.RegisterTaskServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	err := srv.Serve(listen)
	close(done)
	wg.Wait()

	return err
}
