// Package server реализует gRPC-сервер проверки токенов доступа.
//
// TokenServer делегирует проверку сервису трекера и переводит ошибки
// в статусы gRPC: недействительный токен даёт codes.Unauthenticated.
package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/last-exercise/internal/grpc/tokenpb"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
)

// TokenValidator описывает проверку токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// TokenServer реализует tokenpb.TokenServiceServer.
type TokenServer struct {
	validator TokenValidator
	log       *slog.Logger
}

var _ tokenpb.TokenServiceServer = (*TokenServer)(nil)

// NewTokenServer создает новый экземпляр TokenServer.
func NewTokenServer(validator TokenValidator, log *slog.Logger) *TokenServer {
	return &TokenServer{
		validator: validator,
		log:       log,
	}
}

// ValidateToken проверяет токен и возвращает идентификатор пользователя.
func (s *TokenServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.Unauthenticated, "token is required")
	}

	userID, err := s.validator.ValidateToken(ctx, req.GetValue())
	if err != nil {
		s.log.Info("invalid token", sl.Err(err))
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return wrapperspb.String(userID), nil
}
