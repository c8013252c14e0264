package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/inventory"
)

// StockViewCache is the read-through cache for stock views. Entries are
// dropped by the CacheInvalidator after mutations.
type StockViewCache interface {
	Get(ctx context.Context, key string) (*StockView, bool)
	Set(ctx context.Context, key string, view *StockView, ttl time.Duration)
}

// DefaultStockViewTTL bounds staleness for cached stock views
const DefaultStockViewTTL = time.Minute

// StockQueryService serves stock read models
type StockQueryService struct {
	stocks   inventory.StockRepository
	products catalog.ProductLookup
	cache    StockViewCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewStockQueryService creates a new StockQueryService. Cache is optional.
func NewStockQueryService(
	stocks inventory.StockRepository,
	products catalog.ProductLookup,
	cache StockViewCache,
	logger *zap.Logger,
) *StockQueryService {
	return &StockQueryService{
		stocks:   stocks,
		products: products,
		cache:    cache,
		ttl:      DefaultStockViewTTL,
		logger:   logger,
	}
}

// GetStock returns the read model for one stock
func (s *StockQueryService) GetStock(ctx context.Context, stockID, tenantID uuid.UUID) (*StockView, error) {
	key := StockCacheKey(stockID)
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, key); ok {
			return view, nil
		}
	}

	stock, err := s.stocks.FindByIDForTenant(ctx, stockID, tenantID)
	if err != nil {
		return nil, err
	}

	view, err := s.toView(ctx, stock)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, view, s.ttl)
	}
	return view, nil
}

// ListByStorePoint returns the stock views of one store point, paginated.
// Sort parameters pass through to the repository, which whitelists them.
func (s *StockQueryService) ListByStorePoint(ctx context.Context, tenantID, storePointID uuid.UUID, page, pageSize int, orderBy, orderDir string) ([]StockView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	stocks, total, err := s.stocks.ListByStorePoint(ctx, tenantID, storePointID, (page-1)*pageSize, pageSize, orderBy, orderDir)
	if err != nil {
		return nil, 0, err
	}

	views := make([]StockView, 0, len(stocks))
	for _, stock := range stocks {
		view, err := s.toView(ctx, stock)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// toView projects the aggregate onto its read model. Order-mode dependent
// fields fall back to the STOCK policy when the catalog lookup fails;
// a missing product must not break the stock listing.
func (s *StockQueryService) toView(ctx context.Context, stock *inventory.Stock) (*StockView, error) {
	mode := catalog.OrderModeStock
	if s.products != nil {
		m, err := s.products.OrderModeFor(ctx, stock.TenantID, stock.ProductID)
		if err == nil {
			mode = m
		} else {
			s.logger.Warn("order mode lookup failed, assuming stock-backed",
				zap.String("product_id", stock.ProductID.String()),
				zap.Error(err))
		}
	}

	return &StockView{
		StockID:            stock.ID,
		StorePointID:       stock.StorePointID,
		ProductID:          stock.ProductID,
		OnHand:             stock.OnHand,
		Orderable:          stock.Orderable,
		EcomStock:          stock.EcomStock,
		LatestPurchaseRate: stock.LatestPurchaseRate,
		AvgPurchaseRate:    stock.AvgPurchaseRate,
		OutOfStock:         stock.IsOutOfStock(mode),
		QueueingEligible:   stock.QueueingEligible(mode),
	}, nil
}
