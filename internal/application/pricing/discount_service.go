package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// DiscountService resolves cart discounts. A dynamic factor for the customer
// or their delivery area takes precedence over the tier table; when one is
// active the tier progress display is suppressed but the monetary discount
// still applies.
type DiscountService struct {
	tiers    pricing.DiscountTierRepository
	dynamics pricing.DynamicDiscountRepository
	logger   *zap.Logger
}

// NewDiscountService creates a new DiscountService
func NewDiscountService(
	tiers pricing.DiscountTierRepository,
	dynamics pricing.DynamicDiscountRepository,
	logger *zap.Logger,
) *DiscountService {
	return &DiscountService{
		tiers:    tiers,
		dynamics: dynamics,
		logger:   logger,
	}
}

// DiscountForCart returns the monetary discount for a cart total. This is the
// calculator the order context calls during placement.
func (s *DiscountService) DiscountForCart(
	ctx context.Context,
	tenantID, receiverID, areaID uuid.UUID,
	total decimal.Decimal,
) (decimal.Decimal, error) {
	factor, err := s.activeFactor(ctx, tenantID, receiverID, areaID)
	if err != nil {
		return decimal.Zero, err
	}
	if factor != nil {
		return factor.Apply(total), nil
	}

	tiers, err := s.tiers.ListActive(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.DiscountForAmount(tiers, total).DiscountAmount, nil
}

// Preview returns the tier-progress view for a cart total: the earned
// discount and the remaining spend to the next tier.
func (s *DiscountService) Preview(
	ctx context.Context,
	tenantID, receiverID, areaID uuid.UUID,
	total decimal.Decimal,
) (*DiscountPreview, error) {
	tiers, err := s.tiers.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	match := pricing.DiscountForAmount(tiers, total)

	factor, err := s.activeFactor(ctx, tenantID, receiverID, areaID)
	if err != nil {
		return nil, err
	}

	preview := DiscountPreview{
		DiscountPercent: match.DiscountPercent,
		DiscountAmount:  match.DiscountAmount,
		AmountToNext:    match.AmountToNext,
	}
	if match.NextTier != nil {
		min := match.NextTier.MinAmount
		preview.NextTierMinAmount = &min
	}
	if factor != nil {
		preview.Suppressed = true
		preview.DiscountPercent = factor.Factor
		preview.DiscountAmount = factor.Apply(total)
		preview.NextTierMinAmount = nil
		preview.AmountToNext = decimal.Zero
	}
	return &preview, nil
}

// activeFactor resolves the overriding dynamic factor, nil when none applies
func (s *DiscountService) activeFactor(
	ctx context.Context,
	tenantID, receiverID, areaID uuid.UUID,
) (*pricing.DynamicDiscount, error) {
	factor, err := s.dynamics.FindActiveForSubjects(ctx, tenantID, receiverID, areaID)
	if err != nil {
		if shared.IsCode(err, "NOT_FOUND") {
			return nil, nil
		}
		return nil, err
	}
	return factor, nil
}
