package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

const msgCredentials = "could not validate credentials"

// publicMethods may be called without a token.
var publicMethods = map[string]struct{}{
	taskrpc.MethodRegister: {},
	taskrpc.MethodLogin:    {},
	taskrpc.MethodPing:     {},
}

// tokenFromMetadata accepts "authorization: Bearer <t>" or a bare
// "access_token: <t>".
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
		if token, ok := auth.ParseBearer(values[0]); ok {
			return token
		}
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	accessToken := tokenFromMetadata(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, msgCredentials)
	}

	user, err := s.auth.Resolve(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, msgCredentials)
		}
		s.logger.Error(ctx, "resolve identity", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	ctx = context.WithValue(ctx, userKey, user)

	return handler(ctx, req)
}

func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
