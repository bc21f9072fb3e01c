package grpc

import (
	"context"
	"errors"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const validateTokenMethod = "/auth.AuthService/ValidateToken"

var ErrInvalidToken = errors.New("invalid token")

// AuthClient wraps the auth-service gRPC API.
type AuthClient struct {
	conn grpc.ClientConnInterface
}

// NewAuthClient constructs the wrapper.
func NewAuthClient(conn grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{conn: conn}
}

// ValidateToken verifies the bearer token and returns the authenticated user id.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	resp := &structpb.Struct{}
	if err := a.conn.Invoke(ctx, validateTokenMethod, wrapperspb.String(token), resp); err != nil {
		return 0, err
	}
	fields := resp.GetFields()
	if !fields["valid"].GetBoolValue() {
		return 0, ErrInvalidToken
	}
	userID := int(fields["user_id"].GetNumberValue())
	if userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
