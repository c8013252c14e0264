package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// OutboxPublisher writes domain events into the outbox table inside the
// caller's transaction, so the events commit or roll back together with
// the aggregate mutation that produced them.
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx persists events to the outbox within the provided transaction
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, evt := range events {
		payload, err := p.serializer.Serialize(evt)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", evt.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(evt.TenantID(), evt, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)

// OutboxEventPublisher adapts the outbox publisher to the domain's
// EventPublisher port for callers that publish after their own
// transaction has committed.
type OutboxEventPublisher struct {
	db        *gorm.DB
	publisher *OutboxPublisher
}

// NewOutboxEventPublisher creates a new OutboxEventPublisher
func NewOutboxEventPublisher(db *gorm.DB, publisher *OutboxPublisher) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db, publisher: publisher}
}

// Publish writes the events into the outbox in one insert
func (p *OutboxEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.publisher.PublishWithTx(ctx, p.db, events...)
}

var _ shared.EventPublisher = (*OutboxEventPublisher)(nil)
