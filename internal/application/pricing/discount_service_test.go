package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/pricing"
)

func newDiscountFixture(tenantID uuid.UUID) (*DiscountService, *fakeTierRepo, *fakeDynamicRepo) {
	tiers := &fakeTierRepo{tiers: []*pricing.DiscountTier{
		mustTier(tenantID, 1000, "0.5"),
		mustTier(tenantID, 3000, "1"),
		mustTier(tenantID, 5000, "1.5"),
		mustTier(tenantID, 10000, "2"),
	}}
	dynamics := &fakeDynamicRepo{}
	return NewDiscountService(tiers, dynamics, zap.NewNop()), tiers, dynamics
}

func TestDiscountService_TierLookup(t *testing.T) {
	tenantID := uuid.New()
	svc, _, _ := newDiscountFixture(tenantID)

	tests := []struct {
		name     string
		total    int64
		discount string
	}{
		{"below lowest tier", 800, "0"},
		{"exactly on a boundary", 3000, "30"},
		{"between tiers", 4800, "48"},
		{"top tier", 12000, "240"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.DiscountForCart(context.Background(),
				tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(tt.total))
			require.NoError(t, err)
			want, _ := decimal.NewFromString(tt.discount)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestDiscountService_DynamicFactorOverridesTiers(t *testing.T) {
	tenantID := uuid.New()
	receiverID := uuid.New()
	svc, _, dynamics := newDiscountFixture(tenantID)

	factor, err := pricing.NewDynamicDiscount(tenantID, receiverID, pricing.ScopeOrganization, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, dynamics.Save(context.Background(), factor))

	// 4800 earns 1% from the tier table but the customer factor of 3% wins
	got, err := svc.DiscountForCart(context.Background(),
		tenantID, receiverID, uuid.New(), decimal.NewFromInt(4800))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(144)), "got %s", got)
}

func TestDiscountService_OrganizationBeatsArea(t *testing.T) {
	tenantID := uuid.New()
	receiverID := uuid.New()
	areaID := uuid.New()
	svc, _, dynamics := newDiscountFixture(tenantID)

	areaFactor, _ := pricing.NewDynamicDiscount(tenantID, areaID, pricing.ScopeArea, decimal.NewFromInt(2))
	orgFactor, _ := pricing.NewDynamicDiscount(tenantID, receiverID, pricing.ScopeOrganization, decimal.NewFromInt(5))
	require.NoError(t, dynamics.Save(context.Background(), areaFactor))
	require.NoError(t, dynamics.Save(context.Background(), orgFactor))

	got, err := svc.DiscountForCart(context.Background(),
		tenantID, receiverID, areaID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "got %s", got)
}

func TestDiscountService_Preview(t *testing.T) {
	tenantID := uuid.New()
	svc, _, dynamics := newDiscountFixture(tenantID)

	// 4800 sits in the 1% tier, 200 short of the 5000 tier
	preview, err := svc.Preview(context.Background(),
		tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(4800))
	require.NoError(t, err)
	assert.True(t, preview.DiscountPercent.Equal(decimal.NewFromInt(1)))
	assert.True(t, preview.DiscountAmount.Equal(decimal.NewFromInt(48)))
	require.NotNil(t, preview.NextTierMinAmount)
	assert.True(t, preview.NextTierMinAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, preview.AmountToNext.Equal(decimal.NewFromInt(200)))
	assert.False(t, preview.Suppressed)

	// a dynamic factor suppresses the tier progress display
	receiverID := uuid.New()
	factor, _ := pricing.NewDynamicDiscount(tenantID, receiverID, pricing.ScopeOrganization, decimal.NewFromInt(3))
	require.NoError(t, dynamics.Save(context.Background(), factor))

	preview, err = svc.Preview(context.Background(),
		tenantID, receiverID, uuid.New(), decimal.NewFromInt(4800))
	require.NoError(t, err)
	assert.True(t, preview.Suppressed)
	assert.True(t, preview.DiscountAmount.Equal(decimal.NewFromInt(144)))
	assert.Nil(t, preview.NextTierMinAmount)
	assert.True(t, preview.AmountToNext.IsZero())
}
