package reviews

import (
	"context"
	"fmt"

	"trade-service/internal/models"
)

// RoutingKey is where pending-review prompts are published for the review service.
const RoutingKey = "trade.review.pending"

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Publisher hands pending reviews to the review service over the message bus.
type Publisher struct {
	publisher eventPublisher
}

// NewPublisher constructs the review prompt publisher.
func NewPublisher(publisher eventPublisher) *Publisher {
	return &Publisher{publisher: publisher}
}

// CreatePendingReview publishes one prompt.
func (p *Publisher) CreatePendingReview(ctx context.Context, prompt models.ReviewPrompt) error {
	if prompt.ReviewerID == prompt.RevieweeID {
		return fmt.Errorf("review prompt for session %d targets the reviewer", prompt.SessionID)
	}
	if err := p.publisher.Publish(ctx, RoutingKey, prompt); err != nil {
		return fmt.Errorf("publish review prompt: %w", err)
	}
	return nil
}
