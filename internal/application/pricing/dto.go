package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared/valueobject"
)

// DiscountPreview is the tier-progress view shown on the cart: the earned
// discount plus how much more spend reaches the next tier. When a dynamic
// factor overrides the tier table, Suppressed hides the progress display.
type DiscountPreview struct {
	DiscountPercent   decimal.Decimal  `json:"discount_percent"`
	DiscountAmount    decimal.Decimal  `json:"discount_amount"`
	NextTierMinAmount *decimal.Decimal `json:"next_tier_min_amount,omitempty"`
	AmountToNext      decimal.Decimal  `json:"amount_to_next"`
	Suppressed        bool             `json:"suppressed"`
}

// ApplyCreditTermsCommand sets or revises the credit terms on an order
type ApplyCreditTermsCommand struct {
	TenantID     uuid.UUID       `json:"tenant_id" binding:"required"`
	OrderID      uuid.UUID       `json:"order_id" binding:"required"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	TermDays     int             `json:"term_days"`
	CostPercent  decimal.Decimal `json:"cost_percent"`
}

// RecordPaymentCommand settles an amount against a credit entry
type RecordPaymentCommand struct {
	TenantID      uuid.UUID             `json:"tenant_id" binding:"required"`
	CreditEntryID uuid.UUID             `json:"credit_entry_id" binding:"required"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	Method        pricing.PaymentMethod `json:"method" binding:"required"`
}

// CreditView is the read model of one credit entry
type CreditView struct {
	CreditEntryID uuid.UUID            `json:"credit_entry_id"`
	OrderID       uuid.UUID            `json:"order_id"`
	CreditAmount  decimal.Decimal      `json:"credit_amount"`
	CostAmount    decimal.Decimal      `json:"cost_amount"`
	CostPercent   decimal.Decimal      `json:"cost_percent"`
	TermDate      *time.Time           `json:"term_date,omitempty"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	OpenBalance   decimal.Decimal      `json:"open_balance"`
	Settled       bool                 `json:"settled"`
	Currency      valueobject.Currency `json:"currency"`
}

// ToCreditView converts a credit entry to its read model
func ToCreditView(entry *pricing.CreditEntry) CreditView {
	return CreditView{
		CreditEntryID: entry.ID,
		OrderID:       entry.OrderID,
		CreditAmount:  entry.CreditAmount,
		CostAmount:    entry.CostAmount,
		CostPercent:   entry.CostPercent,
		TermDate:      entry.TermDate,
		PaidAmount:    entry.PaidAmount,
		OpenBalance:   entry.OpenBalance,
		Settled:       entry.IsSettled(),
		Currency:      valueobject.DefaultCurrency,
	}
}
