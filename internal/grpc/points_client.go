package grpc

import (
	"context"
	"fmt"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const awardPointsMethod = "/points.Ledger/Award"

// PointsClient wraps the points ledger gRPC API.
type PointsClient struct {
	conn grpc.ClientConnInterface
}

// NewPointsClient constructs the wrapper.
func NewPointsClient(conn grpc.ClientConnInterface) *PointsClient {
	return &PointsClient{conn: conn}
}

// Award credits amount points to userID. The ledger drops repeated idempotency keys.
func (p *PointsClient) Award(ctx context.Context, userID int, amount int, idempotencyKey string) error {
	req, err := structpb.NewStruct(map[string]interface{}{
		"user_id":         userID,
		"amount":          amount,
		"reason":          "trade_completed",
		"idempotency_key": idempotencyKey,
	})
	if err != nil {
		return fmt.Errorf("build award request: %w", err)
	}
	return p.conn.Invoke(ctx, awardPointsMethod, req, &emptypb.Empty{})
}
