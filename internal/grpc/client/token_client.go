// Package client содержит gRPC-клиент сервиса проверки токенов.
// Клиент используется HTTP-middleware, когда проверка вынесена в отдельный процесс.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/last-exercise/internal/grpc/tokenpb"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// TokenClient — клиент сервиса проверки токенов.
type TokenClient struct {
	conn   *grpc.ClientConn
	client tokenpb.TokenServiceClient
}

// NewTokenClient создает клиента для адреса addr. Соединение устанавливается лениво.
func NewTokenClient(addr string, opts ...grpc.DialOption) (*TokenClient, error) {
	const op = "client.NewTokenClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenClient{
		conn:   conn,
		client: tokenpb.NewTokenServiceClient(conn),
	}, nil
}

// Close закрывает соединение.
func (c *TokenClient) Close() error {
	return c.conn.Close()
}

// ValidateToken возвращает идентификатор пользователя из токена.
// Отказ сервера с codes.Unauthenticated переводится в models.ErrInvalidToken.
func (c *TokenClient) ValidateToken(ctx context.Context, token string) (string, error) {
	const op = "client.ValidateToken"

	resp, err := c.client.ValidateToken(ctx, wrapperspb.String(token))
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.GetValue(), nil
}
