package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	"github.com/pharmalink/backend/internal/domain/inventory"
)

// ProfitResult is the outcome of a profit recomputation for one order
type ProfitResult struct {
	OrderID uuid.UUID       `json:"order_id"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// ProfitService recomputes realized profit when an order reaches a terminal
// status: net sell price against the moving-average purchase rate, adjusted
// for short and return quantities. It runs as a durable-queue consumer and a
// failed computation is logged and alerted, never blocking the order flow.
type ProfitService struct {
	txScope invapp.TransactionScope
	alerts  invapp.AlertNotifier
	logger  *zap.Logger
}

// NewProfitService creates a new ProfitService
func NewProfitService(txScope invapp.TransactionScope, alerts invapp.AlertNotifier, logger *zap.Logger) *ProfitService {
	return &ProfitService{
		txScope: txScope,
		alerts:  alerts,
		logger:  logger,
	}
}

// Recompute computes the order's realized profit from its ledger lines.
// Running it twice for the same order yields the same result.
func (s *ProfitService) Recompute(ctx context.Context, payload ProfitRecomputePayload) (*ProfitResult, error) {
	result := &ProfitResult{
		OrderID: payload.OrderID,
		Revenue: decimal.Zero,
		Cost:    decimal.Zero,
		Profit:  decimal.Zero,
	}

	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		lines, err := repos.MovementRepo().FindByOrder(ctx, payload.OrderID, payload.TenantID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if line.Direction != inventory.MovementOut || line.Status == inventory.MovementStatusInactive {
				continue
			}
			stock, err := repos.StockRepo().FindByIDForTenant(ctx, line.StockID, payload.TenantID)
			if err != nil {
				return err
			}

			delivered := line.DeliverableQuantity()
			if delivered.IsZero() {
				continue
			}
			ratePerPrimary := line.Rate
			if line.SecondaryUnit && line.ConversionFactor.GreaterThan(decimal.Zero) {
				ratePerPrimary = line.Rate.Div(line.ConversionFactor)
			}

			revenue := delivered.Mul(ratePerPrimary).Sub(line.DiscountTotal)
			cost := delivered.Mul(stock.AvgPurchaseRate)
			result.Revenue = result.Revenue.Add(revenue)
			result.Cost = result.Cost.Add(cost)
		}
		result.Profit = result.Revenue.Sub(result.Cost)
		return nil
	})
	if err != nil {
		s.logger.Error("profit recomputation failed",
			zap.String("order_id", payload.OrderID.String()),
			zap.Error(err))
		if s.alerts != nil {
			s.alerts.Alert(ctx, "profit recomputation failed",
				"order "+payload.OrderID.String()+": "+err.Error())
		}
		return nil, err
	}

	s.logger.Info("order profit recomputed",
		zap.String("order_id", payload.OrderID.String()),
		zap.String("revenue", result.Revenue.String()),
		zap.String("cost", result.Cost.String()),
		zap.String("profit", result.Profit.String()))
	return result, nil
}
