package usecase

import (
	"context"
	"fmt"

	"github.com/iho/paysaga/internal/domain"
)

// OutboxPublisher is an EventPublisher that stores domain events in the outbox
// for the relay to deliver.
type OutboxPublisher struct {
	outbox OutboxRepository
}

func NewOutboxPublisher(outbox OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

func (p *OutboxPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	if err := p.outbox.Create(ctx, domain.NewOutboxEvent(event)); err != nil {
		return fmt.Errorf("store outbox event %s: %w", event.Type, err)
	}
	return nil
}
