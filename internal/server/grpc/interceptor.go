package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/server/auth"
	"github.com/dmitrijs2005/travelog/internal/server/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// SessionResolver turns verified token claims into the current session.
type SessionResolver interface {
	Resolve(userID, tokenName string, issuedAt time.Time) session.State
}

// accessTokenInterceptor attaches the caller's session.State. Calls
// without a token, or with one that fails to verify, run logged out; the
// handler decides whether that is enough.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return handler(session.WithState(ctx, session.Anonymous), req)
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		s.logger.Warn(ctx, "ignoring access token", "method", info.FullMethod, "err", err)
		return handler(session.WithState(ctx, session.Anonymous), req)
	}

	st := session.State{LoggedIn: true, UserID: claims.UserID, UserName: claims.DisplayName}
	if s.sessions != nil {
		st = s.sessions.Resolve(claims.UserID, claims.DisplayName, claims.Issued())
	}

	return handler(session.WithState(ctx, st), req)
}

// loggingInterceptor logs every unary call with its status code.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
