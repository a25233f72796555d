package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors to gRPC status codes.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": "))
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username already registered")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "task not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, msgCredentials)
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func badRequest(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func (s *GRPCServer) currentUser(ctx context.Context) (*models.User, error) {
	u, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, msgCredentials)
	}
	return u, nil
}

func toTask(t *models.Task) taskrpc.Task {
	return taskrpc.Task{
		ID:            t.ID,
		UserID:        t.UserID,
		Description:   t.Description,
		Completed:     t.Completed,
		HasAttachment: t.HasAttachment(),
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds, err := taskrpc.CredentialsFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return taskrpc.User{ID: u.ID, Username: u.Username}.Struct(), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds, err := taskrpc.CredentialsFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	tok, err := s.users.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "incorrect username or password")
		}
		return nil, s.toStatus(ctx, err)
	}

	return taskrpc.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int64(tok.ExpiresIn.Seconds()),
	}.Struct(), nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return taskrpc.User{ID: u.ID, Username: u.Username}.Struct(), nil
}

func (s *GRPCServer) CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	description, err := taskrpc.NewTaskFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	t, err := s.tasks.Create(ctx, u.ID, description)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toTask(t).Struct(), nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	lr, err := taskrpc.ListRequestFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	list, err := s.tasks.List(ctx, u.ID, lr.Skip, lr.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]taskrpc.Task, 0, len(list))
	for _, t := range list {
		out = append(out, toTask(t))
	}
	return taskrpc.TaskList(out), nil
}

func (s *GRPCServer) GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskrpc.TaskIDFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	t, err := s.tasks.Get(ctx, u.ID, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toTask(t).Struct(), nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := taskrpc.TaskPatchFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	t, err := s.tasks.Update(ctx, u.ID, p.ID, models.TaskUpdate{Description: p.Description, Completed: p.Completed})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toTask(t).Struct(), nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskrpc.TaskIDFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	if err := s.tasks.Delete(ctx, u.ID, id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) AttachmentUploadURL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskrpc.TaskIDFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	url, err := s.tasks.AttachmentUploadURL(ctx, u.ID, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return taskrpc.URL(url), nil
}

func (s *GRPCServer) AttachmentDownloadURL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskrpc.TaskIDFrom(req)
	if err != nil {
		return nil, badRequest(err)
	}

	url, err := s.tasks.AttachmentDownloadURL(ctx, u.ID, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return taskrpc.URL(url), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}
