package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAllForTenant lists products for a tenant with filtering
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("tenant_id = ?", tenantID)
	query = applyProductFilter(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// CountForTenant counts products for a tenant
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("tenant_id = ?", tenantID)
	query = applyProductFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyProductFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ? OR LOWER(code) LIKE ?", like, like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "order_mode":
			query = query.Where("order_mode = ?", value)
		case "salesable":
			query = query.Where("is_salesable = ?", value)
		case "manufacturer":
			query = query.Where("manufacturer = ?", value)
		}
	}
	return query
}

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Organization, error) {
	var org catalog.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindByIDForTenant finds an organization by ID within a tenant
func (r *GormOrganizationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Organization, error) {
	var org catalog.Organization
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindByArea lists the organizations in a delivery area
func (r *GormOrganizationRepository) FindByArea(ctx context.Context, tenantID, areaID uuid.UUID) ([]catalog.Organization, error) {
	var orgs []catalog.Organization
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND area_id = ?", tenantID, areaID).
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindInterestedInRestock returns organizations registered for a restock
// reminder on the product.
func (r *GormOrganizationRepository) FindInterestedInRestock(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.Organization, error) {
	var orgs []catalog.Organization
	if err := r.db.WithContext(ctx).
		Joins("JOIN restock_interests ON restock_interests.organization_id = organizations.id").
		Where("restock_interests.tenant_id = ? AND restock_interests.product_id = ?", tenantID, productID).
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *catalog.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// GormStorePointRepository implements StorePointRepository using GORM
type GormStorePointRepository struct {
	db *gorm.DB
}

// NewGormStorePointRepository creates a new GormStorePointRepository
func NewGormStorePointRepository(db *gorm.DB) *GormStorePointRepository {
	return &GormStorePointRepository{db: db}
}

// FindByID finds a store point by its ID
func (r *GormStorePointRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StorePoint, error) {
	var sp catalog.StorePoint
	if err := r.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindByIDForTenant finds a store point by ID within a tenant
func (r *GormStorePointRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.StorePoint, error) {
	var sp catalog.StorePoint
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindDefault returns the tenant's default store point
func (r *GormStorePointRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*catalog.StorePoint, error) {
	var sp catalog.StorePoint
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindAllForTenant lists store points for a tenant
func (r *GormStorePointRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.StorePoint, error) {
	var sps []catalog.StorePoint
	query := r.db.WithContext(ctx).
		Model(&catalog.StorePoint{}).
		Where("tenant_id = ?", tenantID)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("name ASC").Find(&sps).Error; err != nil {
		return nil, err
	}
	return sps, nil
}

// Save creates or updates a store point
func (r *GormStorePointRepository) Save(ctx context.Context, sp *catalog.StorePoint) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// GormRestockInterestRepository implements RestockInterestRepository using GORM
type GormRestockInterestRepository struct {
	db *gorm.DB
}

// NewGormRestockInterestRepository creates a new GormRestockInterestRepository
func NewGormRestockInterestRepository(db *gorm.DB) *GormRestockInterestRepository {
	return &GormRestockInterestRepository{db: db}
}

// Save registers interest, ignoring duplicate registrations
func (r *GormRestockInterestRepository) Save(ctx context.Context, interest *catalog.RestockInterest) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND organization_id = ?",
			interest.TenantID, interest.ProductID, interest.OrganizationID).
		FirstOrCreate(interest).Error
}

// DeleteForProduct removes every registration for a product
func (r *GormRestockInterestRepository) DeleteForProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Delete(&catalog.RestockInterest{}).Error
}

var (
	_ catalog.ProductRepository         = (*GormProductRepository)(nil)
	_ catalog.OrganizationRepository    = (*GormOrganizationRepository)(nil)
	_ catalog.StorePointRepository      = (*GormStorePointRepository)(nil)
	_ catalog.RestockInterestRepository = (*GormRestockInterestRepository)(nil)
)
