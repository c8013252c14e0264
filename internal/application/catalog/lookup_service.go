package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// SettingsCache caches organization settings with a TTL. Cache failures are
// soft: lookups fall through to the repository.
type SettingsCache interface {
	GetSettings(ctx context.Context, tenantID, organizationID uuid.UUID) (*catalog.OrganizationSettings, bool)
	SetSettings(ctx context.Context, tenantID, organizationID uuid.UUID, settings catalog.OrganizationSettings, ttl time.Duration)
}

// DefaultSettingsTTL bounds how stale served organization settings may be
const DefaultSettingsTTL = 5 * time.Minute

// LookupService serves the read-only catalog views the inventory, order and
// pricing contexts consume.
type LookupService struct {
	products    catalog.ProductRepository
	orgs        catalog.OrganizationRepository
	cache       SettingsCache
	settingsTTL time.Duration
	logger      *zap.Logger
}

var (
	_ catalog.ProductLookup      = (*LookupService)(nil)
	_ catalog.OrganizationLookup = (*LookupService)(nil)
)

// NewLookupService creates a new LookupService. The cache is optional.
func NewLookupService(
	products catalog.ProductRepository,
	orgs catalog.OrganizationRepository,
	cache SettingsCache,
	logger *zap.Logger,
) *LookupService {
	return &LookupService{
		products:    products,
		orgs:        orgs,
		cache:       cache,
		settingsTTL: DefaultSettingsTTL,
		logger:      logger,
	}
}

// OrderModeFor returns the ordering policy for a product
func (s *LookupService) OrderModeFor(ctx context.Context, tenantID, productID uuid.UUID) (catalog.OrderMode, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return "", err
	}
	return product.OrderMode, nil
}

// IsSalesable reports whether the product may be sold through e-commerce
func (s *LookupService) IsSalesable(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return false, err
	}
	return product.IsSalesable && product.IsActive(), nil
}

// SettingsFor returns the organization settings, served from cache when fresh
func (s *LookupService) SettingsFor(ctx context.Context, tenantID, organizationID uuid.UUID) (catalog.OrganizationSettings, error) {
	if s.cache != nil {
		if settings, ok := s.cache.GetSettings(ctx, tenantID, organizationID); ok {
			return *settings, nil
		}
	}

	org, err := s.orgs.FindByIDForTenant(ctx, tenantID, organizationID)
	if err != nil {
		return catalog.OrganizationSettings{}, err
	}

	if s.cache != nil {
		s.cache.SetSettings(ctx, tenantID, organizationID, org.Settings, s.settingsTTL)
	}
	return org.Settings, nil
}

// ProductView is the product read model served by the catalog listing
type ProductView struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Code         string            `json:"code"`
	GenericName  string            `json:"generic_name,omitempty"`
	Manufacturer string            `json:"manufacturer,omitempty"`
	OrderMode    catalog.OrderMode `json:"order_mode"`
	IsSalesable  bool              `json:"is_salesable"`
	TradePrice   decimal.Decimal   `json:"trade_price"`
	PrimaryUnit  string            `json:"primary_unit,omitempty"`
}

// ListProducts pages through a tenant's product catalog
func (s *LookupService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[ProductView], error) {
	filter = filter.Normalize()

	total, err := s.products.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ProductView]{}, err
	}

	products, err := s.products.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ProductView]{}, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			ID:           p.ID,
			Name:         p.Name,
			Code:         p.Code,
			GenericName:  p.GenericName,
			Manufacturer: p.Manufacturer,
			OrderMode:    p.OrderMode,
			IsSalesable:  p.IsSalesable,
			TradePrice:   p.TradePrice,
			PrimaryUnit:  p.PrimaryUnit,
		})
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize), nil
}

// RestockInterest returns the organizations interested in a product restock
func (s *LookupService) RestockInterest(ctx context.Context, tenantID, productID uuid.UUID) ([]uuid.UUID, error) {
	orgs, err := s.orgs.FindInterestedInRestock(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(orgs))
	for _, org := range orgs {
		ids = append(ids, org.ID)
	}
	return ids, nil
}
