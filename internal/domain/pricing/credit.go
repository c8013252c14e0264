package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// PaymentMethod is how a credit payment was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodMobile       PaymentMethod = "MOBILE"
	PaymentMethodAdjustment   PaymentMethod = "ADJUSTMENT"
)

// IsValid returns true for a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodMobile, PaymentMethodAdjustment:
		return true
	}
	return false
}

// CreditPayment is one settlement against a credit entry
type CreditPayment struct {
	shared.BaseEntity
	CreditEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method        PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaidAt        time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (CreditPayment) TableName() string {
	return "credit_payments"
}

// CreditEntry is the procurement credit ledger for one order: the credited
// amount, its financing cost, and the payments settled against both.
//
// Balance identity, maintained on every mutation:
//
//	OpenBalance = CreditAmount + CostAmount - Σ payments
type CreditEntry struct {
	shared.TenantAggregateRoot
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CreditAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPercent  decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	TermDate     *time.Time      `gorm:"type:date"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpenBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Payments     []CreditPayment `gorm:"foreignKey:CreditEntryID"`
}

// TableName returns the table name for GORM
func (CreditEntry) TableName() string {
	return "credit_entries"
}

// NewCreditEntry opens an empty credit ledger for an order
func NewCreditEntry(tenantID, orderID uuid.UUID) (*CreditEntry, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant and order are required")
	}
	return &CreditEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
	}, nil
}

// ApplyCreditTerms sets the credited amount, the payment term date and the
// financing cost. The credit may not exceed the order subtotal and may not
// drop below what has already been paid.
func (c *CreditEntry) ApplyCreditTerms(
	orderDate time.Time,
	creditAmount decimal.Decimal,
	termDays int,
	costPercent decimal.Decimal,
	subTotal decimal.Decimal,
) error {
	if creditAmount.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Credit amount cannot be negative")
	}
	if termDays < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Term days cannot be negative")
	}
	if costPercent.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Cost percent cannot be negative")
	}
	if creditAmount.GreaterThan(subTotal) {
		return shared.NewDomainError("VALIDATION_ERROR", "Credit amount exceeds the order subtotal")
	}
	if creditAmount.LessThan(c.PaidAmount) {
		return shared.NewDomainError("VALIDATION_ERROR", "Credit amount cannot drop below what is already paid")
	}

	termDate := orderDate.AddDate(0, 0, termDays)
	c.CreditAmount = creditAmount
	c.CostPercent = costPercent
	c.CostAmount = creditAmount.Mul(costPercent).Div(decimal.NewFromInt(100))
	c.TermDate = &termDate
	c.recomputeBalance()
	return nil
}

// RecordPayment appends a settlement and recomputes the open balance.
// Overpayment beyond the open balance is refused.
func (c *CreditEntry) RecordPayment(amount decimal.Decimal, method PaymentMethod) (*CreditPayment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid payment method")
	}
	if amount.GreaterThan(c.OpenBalance) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment exceeds the open credit balance")
	}

	payment := CreditPayment{
		BaseEntity:    shared.NewBaseEntity(),
		CreditEntryID: c.ID,
		Amount:        amount,
		Method:        method,
		PaidAt:        time.Now(),
	}
	c.Payments = append(c.Payments, payment)
	c.PaidAmount = c.PaidAmount.Add(amount)
	c.recomputeBalance()
	c.AddDomainEvent(NewCreditPaymentRecordedEvent(c, &payment))
	if c.IsSettled() {
		c.AddDomainEvent(NewCreditSettledEvent(c))
	}
	return &payment, nil
}

// IsSettled reports whether the open balance reached zero
func (c *CreditEntry) IsSettled() bool {
	return c.OpenBalance.IsZero()
}

// IsOverdue reports whether the term date passed with balance outstanding
func (c *CreditEntry) IsOverdue(now time.Time) bool {
	return c.TermDate != nil && now.After(*c.TermDate) && c.OpenBalance.GreaterThan(decimal.Zero)
}

func (c *CreditEntry) recomputeBalance() {
	c.OpenBalance = c.CreditAmount.Add(c.CostAmount).Sub(c.PaidAmount)
	c.UpdatedAt = time.Now()
}
