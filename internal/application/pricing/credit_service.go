package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// CreditService maintains the procurement credit ledger: terms applied against
// an order's subtotal and payments settled against the open balance.
type CreditService struct {
	credits        pricing.CreditRepository
	orders         order.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCreditService creates a new CreditService
func NewCreditService(
	credits pricing.CreditRepository,
	orders order.Repository,
	logger *zap.Logger,
) *CreditService {
	return &CreditService{
		credits: credits,
		orders:  orders,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CreditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyTerms sets or revises the credit terms on an order. The entry is
// created on first use; revising terms is allowed as long as the credit does
// not drop below what has already been paid.
func (s *CreditService) ApplyTerms(ctx context.Context, cmd ApplyCreditTermsCommand) (*CreditView, error) {
	o, err := s.orders.FindByIDForTenant(ctx, cmd.OrderID, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	if !o.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot apply credit terms to a deactivated order")
	}

	entry, err := s.credits.FindByOrder(ctx, cmd.OrderID, cmd.TenantID)
	if err != nil {
		if !shared.IsCode(err, "NOT_FOUND") {
			return nil, err
		}
		entry, err = pricing.NewCreditEntry(cmd.TenantID, cmd.OrderID)
		if err != nil {
			return nil, err
		}
	}

	if err := entry.ApplyCreditTerms(o.CreatedAt, cmd.CreditAmount, cmd.TermDays, cmd.CostPercent, o.SubTotal()); err != nil {
		return nil, err
	}
	if err := s.credits.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, entry)

	view := ToCreditView(entry)
	return &view, nil
}

// RecordPayment settles an amount against the entry's open balance
func (s *CreditService) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*CreditView, error) {
	entry, err := s.credits.FindByIDForTenant(ctx, cmd.CreditEntryID, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.RecordPayment(cmd.Amount, cmd.Method); err != nil {
		return nil, err
	}
	if err := s.credits.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, entry)

	if entry.IsSettled() {
		s.logger.Info("credit entry settled",
			zap.String("credit_entry_id", entry.ID.String()),
			zap.String("order_id", entry.OrderID.String()))
	}

	view := ToCreditView(entry)
	return &view, nil
}

// GetByOrder returns the credit ledger view for an order
func (s *CreditService) GetByOrder(ctx context.Context, orderID, tenantID uuid.UUID) (*CreditView, error) {
	entry, err := s.credits.FindByOrder(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}
	view := ToCreditView(entry)
	return &view, nil
}

// ListOverdue returns every entry whose term date passed with balance
// outstanding, for the collections report.
func (s *CreditService) ListOverdue(ctx context.Context, tenantID uuid.UUID) ([]CreditView, error) {
	entries, err := s.credits.ListOverdue(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]CreditView, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsOverdue(now) {
			continue
		}
		views = append(views, ToCreditView(entry))
	}
	return views, nil
}

func (s *CreditService) publishEvents(ctx context.Context, entry *pricing.CreditEntry) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, entry.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish credit events", zap.Error(err))
	}
	entry.ClearDomainEvents()
}
