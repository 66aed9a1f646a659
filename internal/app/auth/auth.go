// Package auth собирает gRPC-сервис проверки токенов доступа.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/last-exercise/internal/config"
	"github.com/magabrotheeeer/last-exercise/internal/grpc/server"
	"github.com/magabrotheeeer/last-exercise/internal/grpc/tokenpb"
	"github.com/magabrotheeeer/last-exercise/internal/lib/jwt"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
}

// tokenValidator проверяет подпись и срок действия токена без обращения к хранилищу.
type tokenValidator struct {
	maker *jwt.MakerImpl
}

func (v tokenValidator) ValidateToken(_ context.Context, token string) (string, error) {
	return v.maker.UserID(token)
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "auth.New"

	jwtMaker, err := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lis, err := net.Listen("tcp", cfg.GRPCServer.Address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	tokenpb.RegisterTokenServiceServer(grpcServer, server.NewTokenServer(tokenValidator{maker: jwtMaker}, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(tokenpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &App{
		grpcServer: grpcServer,
		listener:   lis,
		logger:     logger,
	}, nil
}

// Addr возвращает адрес, на котором слушает сервер.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
