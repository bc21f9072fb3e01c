package grpc

import (
	"context"
	"fmt"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"trade-service/internal/models"
)

const bulkCardsMethod = "/catalog.CardCatalog/BulkCards"

// CatalogClient wraps the card catalog gRPC API.
type CatalogClient struct {
	conn grpc.ClientConnInterface
}

// NewCatalogClient constructs the wrapper.
func NewCatalogClient(conn grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{conn: conn}
}

// BulkCards fetches display metadata for several card templates in one call.
func (c *CatalogClient) BulkCards(ctx context.Context, ids []int) ([]models.CardInfo, error) {
	if len(ids) == 0 {
		return []models.CardInfo{}, nil
	}
	list := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		list = append(list, id)
	}
	req, err := structpb.NewStruct(map[string]interface{}{"ids": list})
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, bulkCardsMethod, req, resp); err != nil {
		return nil, err
	}

	values := resp.GetFields()["cards"].GetListValue().GetValues()
	cards := make([]models.CardInfo, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		id := int(f["id"].GetNumberValue())
		if id == 0 {
			continue
		}
		cards = append(cards, models.CardInfo{
			ID:       id,
			Name:     f["name"].GetStringValue(),
			ImageURL: f["image_url"].GetStringValue(),
			Rarity:   f["rarity"].GetStringValue(),
		})
	}
	return cards, nil
}
