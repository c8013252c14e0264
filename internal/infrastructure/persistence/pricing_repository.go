package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormDiscountTierRepository implements DiscountTierRepository using GORM
type GormDiscountTierRepository struct {
	db *gorm.DB
}

// NewGormDiscountTierRepository creates a new GormDiscountTierRepository
func NewGormDiscountTierRepository(db *gorm.DB) *GormDiscountTierRepository {
	return &GormDiscountTierRepository{db: db}
}

// Save creates or updates a tier rule
func (r *GormDiscountTierRepository) Save(ctx context.Context, tier *pricing.DiscountTier) error {
	return r.db.WithContext(ctx).Save(tier).Error
}

// FindByIDForTenant finds a tier by ID within a tenant
func (r *GormDiscountTierRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*pricing.DiscountTier, error) {
	var tier pricing.DiscountTier
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tier, nil
}

// ListActive returns the active tiers ordered by ascending minimum amount
func (r *GormDiscountTierRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*pricing.DiscountTier, error) {
	var tiers []*pricing.DiscountTier
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("min_amount ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GormDynamicDiscountRepository implements DynamicDiscountRepository using GORM
type GormDynamicDiscountRepository struct {
	db *gorm.DB
}

// NewGormDynamicDiscountRepository creates a new GormDynamicDiscountRepository
func NewGormDynamicDiscountRepository(db *gorm.DB) *GormDynamicDiscountRepository {
	return &GormDynamicDiscountRepository{db: db}
}

// Save creates or updates a dynamic factor
func (r *GormDynamicDiscountRepository) Save(ctx context.Context, discount *pricing.DynamicDiscount) error {
	return r.db.WithContext(ctx).Save(discount).Error
}

// FindActiveForSubjects returns the first active factor matching the
// organization or its area, organization scope winning.
func (r *GormDynamicDiscountRepository) FindActiveForSubjects(ctx context.Context, tenantID uuid.UUID, organizationID, areaID uuid.UUID) (*pricing.DynamicDiscount, error) {
	var discount pricing.DynamicDiscount
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where(r.db.
			Where("scope = ? AND subject_id = ?", pricing.ScopeOrganization, organizationID).
			Or("scope = ? AND subject_id = ?", pricing.ScopeArea, areaID)).
		Order("CASE scope WHEN 'ORGANIZATION' THEN 0 ELSE 1 END").
		First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &discount, nil
}

// GormCreditRepository implements CreditRepository using GORM
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// Save creates or updates a credit entry with its payments
func (r *GormCreditRepository) Save(ctx context.Context, entry *pricing.CreditEntry) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(entry).Error
}

// SaveWithLock saves with an optimistic version check. Payments are inserted
// separately because the version-guarded update covers the entry row only.
func (r *GormCreditRepository) SaveWithLock(ctx context.Context, entry *pricing.CreditEntry) error {
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(map[string]interface{}{
			"credit_amount": entry.CreditAmount,
			"cost_amount":   entry.CostAmount,
			"cost_percent":  entry.CostPercent,
			"term_date":     entry.TermDate,
			"paid_amount":   entry.PaidAmount,
			"open_balance":  entry.OpenBalance,
			"version":       entry.Version,
			"updated_at":    entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// first save inserts the row, later saves with a stale version conflict
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&pricing.CreditEntry{}).
			Where("id = ?", entry.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "Credit entry was modified by another transaction")
		}
		if err := r.db.WithContext(ctx).Omit("Payments").Create(entry).Error; err != nil {
			return err
		}
	}
	return r.savePayments(ctx, entry)
}

func (r *GormCreditRepository) savePayments(ctx context.Context, entry *pricing.CreditEntry) error {
	for i := range entry.Payments {
		payment := &entry.Payments[i]
		if err := r.db.WithContext(ctx).
			Where("id = ?", payment.ID).
			FirstOrCreate(payment).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByIDForTenant finds a credit entry by ID within a tenant
func (r *GormCreditRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*pricing.CreditEntry, error) {
	var entry pricing.CreditEntry
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByOrder finds the credit entry for an order
func (r *GormCreditRepository) FindByOrder(ctx context.Context, orderID, tenantID uuid.UUID) (*pricing.CreditEntry, error) {
	var entry pricing.CreditEntry
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListOverdue returns entries whose term date passed with balance outstanding
func (r *GormCreditRepository) ListOverdue(ctx context.Context, tenantID uuid.UUID) ([]*pricing.CreditEntry, error) {
	var entries []*pricing.CreditEntry
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("tenant_id = ? AND term_date < CURRENT_DATE AND open_balance > 0", tenantID).
		Order("term_date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ pricing.DiscountTierRepository    = (*GormDiscountTierRepository)(nil)
	_ pricing.DynamicDiscountRepository = (*GormDynamicDiscountRepository)(nil)
	_ pricing.CreditRepository          = (*GormCreditRepository)(nil)
)
