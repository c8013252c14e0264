package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/catalog"
)

// CatalogService carries the few catalog mutations the fulfillment flow
// needs: ordering policy, salesable flag, organization settings and restock
// interest registration. The catalog proper is managed elsewhere.
type CatalogService struct {
	products catalog.ProductRepository
	orgs     catalog.OrganizationRepository
	restocks catalog.RestockInterestRepository
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	products catalog.ProductRepository,
	orgs catalog.OrganizationRepository,
	restocks catalog.RestockInterestRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		products: products,
		orgs:     orgs,
		restocks: restocks,
		logger:   logger,
	}
}

// SetProductOrderMode changes a product's ordering policy
func (s *CatalogService) SetProductOrderMode(ctx context.Context, tenantID, productID uuid.UUID, mode catalog.OrderMode) error {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if err := product.SetOrderMode(mode); err != nil {
		return err
	}
	return s.products.Save(ctx, product)
}

// SetProductSalesable toggles a product's e-commerce availability
func (s *CatalogService) SetProductSalesable(ctx context.Context, tenantID, productID uuid.UUID, salesable bool) error {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	product.SetSalesable(salesable)

	s.logger.Info("product salesable flag changed",
		zap.String("product_id", productID.String()),
		zap.Bool("salesable", salesable))
	return s.products.Save(ctx, product)
}

// UpdateOrganizationSettings replaces an organization's settings
func (s *CatalogService) UpdateOrganizationSettings(ctx context.Context, tenantID, organizationID uuid.UUID, settings catalog.OrganizationSettings) error {
	org, err := s.orgs.FindByIDForTenant(ctx, tenantID, organizationID)
	if err != nil {
		return err
	}
	if err := org.UpdateSettings(settings); err != nil {
		return err
	}
	return s.orgs.Save(ctx, org)
}

// RegisterRestockInterest registers an organization for a restock reminder
func (s *CatalogService) RegisterRestockInterest(ctx context.Context, tenantID, productID, organizationID uuid.UUID) error {
	interest, err := catalog.NewRestockInterest(tenantID, productID, organizationID)
	if err != nil {
		return err
	}
	return s.restocks.Save(ctx, interest)
}
