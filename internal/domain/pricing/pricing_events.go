package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// Event type constants for the pricing context
const (
	EventTypeCreditPaymentRecorded = "pricing.credit.payment_recorded"
	EventTypeCreditSettled         = "pricing.credit.settled"
)

// CreditPaymentRecordedEvent fires on every settlement against a credit entry
type CreditPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CreditEntryID uuid.UUID       `json:"credit_entry_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	OpenBalance   decimal.Decimal `json:"open_balance"`
}

// NewCreditPaymentRecordedEvent creates a payment event
func NewCreditPaymentRecordedEvent(entry *CreditEntry, payment *CreditPayment) *CreditPaymentRecordedEvent {
	return &CreditPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditPaymentRecorded, "CreditEntry", entry.ID, entry.TenantID),
		CreditEntryID:   entry.ID,
		OrderID:         entry.OrderID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          string(payment.Method),
		OpenBalance:     entry.OpenBalance,
	}
}

// CreditSettledEvent fires once when a payment zeroes the open balance
type CreditSettledEvent struct {
	shared.BaseDomainEvent
	CreditEntryID uuid.UUID       `json:"credit_entry_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// NewCreditSettledEvent creates a settlement event
func NewCreditSettledEvent(entry *CreditEntry) *CreditSettledEvent {
	return &CreditSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditSettled, "CreditEntry", entry.ID, entry.TenantID),
		CreditEntryID:   entry.ID,
		OrderID:         entry.OrderID,
		PaidAmount:      entry.PaidAmount,
	}
}
