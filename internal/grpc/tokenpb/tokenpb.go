// Package tokenpb описывает gRPC-сервис проверки токенов доступа.
//
// Сообщения сервиса являются стандартными обёртками protobuf (StringValue), поэтому
// описание сервиса объявлено вручную, без сгенерированного кода.
package tokenpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName полное имя сервиса.
	ServiceName = "lastexercise.auth.v1.TokenService"
	// ValidateTokenMethod полное имя метода проверки токена.
	ValidateTokenMethod = "/" + ServiceName + "/ValidateToken"
)

// TokenServiceServer описывает серверную часть сервиса.
// ValidateToken принимает токен и возвращает идентификатор пользователя.
type TokenServiceServer interface {
	ValidateToken(ctx context.Context, token *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// RegisterTokenServiceServer регистрирует реализацию сервиса на gRPC-сервере.
func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&TokenServiceDesc, srv)
}

func validateTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateTokenMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TokenServiceServer).ValidateToken(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// TokenServiceDesc описание сервиса для grpc.Server.
var TokenServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateToken",
			Handler:    validateTokenHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lastexercise/auth/v1/token.proto",
}

// TokenServiceClient описывает клиентскую часть сервиса.
type TokenServiceClient interface {
	ValidateToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type tokenServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenServiceClient создает клиента поверх соединения.
func NewTokenServiceClient(cc grpc.ClientConnInterface) TokenServiceClient {
	return &tokenServiceClient{cc: cc}
}

func (c *tokenServiceClient) ValidateToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ValidateTokenMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
