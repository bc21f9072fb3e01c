package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeConn struct {
	method string
	req    interface{}
	reply  proto.Message
	err    error
}

func (f *fakeConn) Invoke(_ context.Context, method string, args interface{}, reply interface{}, _ ...grpc.CallOption) error {
	f.method = method
	f.req = args
	if f.err != nil {
		return f.err
	}
	if f.reply != nil {
		proto.Merge(reply.(proto.Message), f.reply)
	}
	return nil
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestValidateTokenSuccess(t *testing.T) {
	conn := &fakeConn{reply: mustStruct(t, map[string]interface{}{"valid": true, "user_id": 42})}

	userID, err := NewAuthClient(conn).ValidateToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, validateTokenMethod, conn.method)
	assert.Equal(t, "token", conn.req.(*wrapperspb.StringValue).GetValue())
}

func TestValidateTokenInvalid(t *testing.T) {
	conn := &fakeConn{reply: mustStruct(t, map[string]interface{}{"valid": false})}

	_, err := NewAuthClient(conn).ValidateToken(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenEmptySkipsCall(t *testing.T) {
	conn := &fakeConn{}

	_, err := NewAuthClient(conn).ValidateToken(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, conn.method)
}

func TestAwardSendsIdempotencyKey(t *testing.T) {
	conn := &fakeConn{}

	require.NoError(t, NewPointsClient(conn).Award(context.Background(), 7, 10, "trade-session:1:user:7"))
	assert.Equal(t, awardPointsMethod, conn.method)
	fields := conn.req.(*structpb.Struct).GetFields()
	assert.Equal(t, float64(7), fields["user_id"].GetNumberValue())
	assert.Equal(t, float64(10), fields["amount"].GetNumberValue())
	assert.Equal(t, "trade-session:1:user:7", fields["idempotency_key"].GetStringValue())
}

func TestAwardPropagatesError(t *testing.T) {
	conn := &fakeConn{err: errors.New("unavailable")}

	err := NewPointsClient(conn).Award(context.Background(), 7, 10, "k")
	require.EqualError(t, err, "unavailable")
}

func TestBulkCardsDecodesResponse(t *testing.T) {
	conn := &fakeConn{reply: mustStruct(t, map[string]interface{}{
		"cards": []interface{}{
			map[string]interface{}{"id": 3, "name": "Dragon", "image_url": "https://img/3", "rarity": "rare"},
			map[string]interface{}{"name": "missing id"},
		},
	})}

	cards, err := NewCatalogClient(conn).BulkCards(context.Background(), []int{3, 4})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 3, cards[0].ID)
	assert.Equal(t, "Dragon", cards[0].Name)
	assert.Equal(t, "rare", cards[0].Rarity)
}

func TestBulkCardsEmptySkipsCall(t *testing.T) {
	conn := &fakeConn{}

	cards, err := NewCatalogClient(conn).BulkCards(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Empty(t, conn.method)
}
