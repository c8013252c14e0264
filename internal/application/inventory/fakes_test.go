package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

type fakeStockRepo struct {
	mu     sync.Mutex
	stocks map[uuid.UUID]*inventory.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[uuid.UUID]*inventory.Stock)}
}

func (r *fakeStockRepo) Save(_ context.Context, stock *inventory.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocks[stock.ID] = stock
	return nil
}

func (r *fakeStockRepo) SaveWithLock(ctx context.Context, stock *inventory.Stock) error {
	stock.IncrementVersion()
	return r.Save(ctx, stock)
}

func (r *fakeStockRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeStockRepo) FindByIDForTenant(ctx context.Context, id, _ uuid.UUID) (*inventory.Stock, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeStockRepo) FindByIDForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*inventory.Stock, error) {
	return r.FindByIDForTenant(ctx, id, tenantID)
}

func (r *fakeStockRepo) FindByProduct(_ context.Context, tenantID, storePointID, productID uuid.UUID) (*inventory.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stocks {
		if s.TenantID == tenantID && s.StorePointID == storePointID && s.ProductID == productID {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRepo) GetOrCreate(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*inventory.Stock, error) {
	if s, err := r.FindByProduct(ctx, tenantID, storePointID, productID); err == nil {
		return s, nil
	}
	s, err := inventory.NewStock(tenantID, storePointID, productID)
	if err != nil {
		return nil, err
	}
	return s, r.Save(ctx, s)
}

func (r *fakeStockRepo) ListByStorePoint(_ context.Context, tenantID, storePointID uuid.UUID, offset, limit int, _, _ string) ([]*inventory.Stock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*inventory.Stock
	for _, s := range r.stocks {
		if s.TenantID == tenantID && s.StorePointID == storePointID {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.String() < matched[j].ID.String()
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeStockRepo) ListSalesable(_ context.Context, _ uuid.UUID) ([]*inventory.Stock, error) {
	return nil, nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements map[uuid.UUID]*inventory.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: make(map[uuid.UUID]*inventory.StockMovement)}
}

func (r *fakeMovementRepo) Create(_ context.Context, m *inventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements[m.ID] = m
	return nil
}

func (r *fakeMovementRepo) CreateBatch(ctx context.Context, ms []*inventory.StockMovement) error {
	for _, m := range ms {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMovementRepo) Update(ctx context.Context, m *inventory.StockMovement) error {
	return r.Create(ctx, m)
}

func (r *fakeMovementRepo) FindByID(_ context.Context, id, _ uuid.UUID) (*inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *fakeMovementRepo) FindByOrder(_ context.Context, orderID, _ uuid.UUID) ([]*inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.StockMovement
	for _, m := range r.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByStock(_ context.Context, stockID, _ uuid.UUID, _, _ time.Time) ([]*inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.StockMovement
	for _, m := range r.movements {
		if m.StockID == stockID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumActiveByStock(_ context.Context, stockID, _ uuid.UUID) (inventory.MovementSum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := inventory.MovementSum{StockID: stockID, In: decimal.Zero, Out: decimal.Zero}
	for _, m := range r.movements {
		if m.StockID != stockID || !m.Status.CountsTowardOnHand() {
			continue
		}
		if m.Direction == inventory.MovementIn {
			sum.In = sum.In.Add(m.EffectiveQuantity())
		} else {
			sum.Out = sum.Out.Add(m.EffectiveQuantity())
		}
	}
	return sum, nil
}

func (r *fakeMovementRepo) SumAttachedToOrders(_ context.Context, _, _ uuid.UUID, _, _ []string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *fakeMovementRepo) UpdateStatus(_ context.Context, orderID, _ uuid.UUID, from, to inventory.MovementStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.OrderID != nil && *m.OrderID == orderID && m.Status == from {
			m.Status = to
			n++
		}
	}
	return n, nil
}

func (r *fakeMovementRepo) ReplaceStockReference(_ context.Context, fromStockID, toStockID, _ uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.StockID == fromStockID {
			m.StockID = toStockID
			n++
		}
	}
	return n, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, o *order.Order) error {
	o.IncrementVersion()
	return r.Save(ctx, o)
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByIDForTenant(ctx context.Context, id, _ uuid.UUID) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) FindBySource(_ context.Context, sourceOrderID, _ uuid.UUID, kind order.OrderKind) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Kind == kind && o.SourceOrderID != nil && *o.SourceOrderID == sourceOrderID {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) ListByGroup(_ context.Context, groupID, _ uuid.UUID) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.GroupID != nil && *o.GroupID == groupID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByKind(_ context.Context, _ uuid.UUID, _ order.OrderKind, _, _ int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) ListInFlightBySupplier(_ context.Context, _, _ uuid.UUID) ([]*order.Order, error) {
	return nil, nil
}

type fakeTrackingRepo struct {
	mu     sync.Mutex
	events []*order.TrackingEvent
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{}
}

func (r *fakeTrackingRepo) Append(_ context.Context, event *order.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.Sequence = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

func (r *fakeTrackingRepo) Latest(_ context.Context, orderID, _ uuid.UUID) (*order.TrackingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].OrderID == orderID {
			return r.events[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTrackingRepo) ListByOrder(_ context.Context, orderID, _ uuid.UUID) ([]*order.TrackingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.TrackingEvent
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeTrackingRepo) CountStatus(_ context.Context, orderID, _ uuid.UUID, status order.TrackingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.events {
		if e.OrderID == orderID && e.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeProductLookup struct {
	modes     map[uuid.UUID]catalog.OrderMode
	salesable map[uuid.UUID]bool
}

func newFakeProductLookup() *fakeProductLookup {
	return &fakeProductLookup{
		modes:     make(map[uuid.UUID]catalog.OrderMode),
		salesable: make(map[uuid.UUID]bool),
	}
}

func (l *fakeProductLookup) OrderModeFor(_ context.Context, _, productID uuid.UUID) (catalog.OrderMode, error) {
	if mode, ok := l.modes[productID]; ok {
		return mode, nil
	}
	return catalog.OrderModeStock, nil
}

func (l *fakeProductLookup) IsSalesable(_ context.Context, _, productID uuid.UUID) (bool, error) {
	return l.salesable[productID], nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type capturingCache struct {
	mu   sync.Mutex
	keys []string
}

func (c *capturingCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
}

type capturingAlerts struct {
	mu       sync.Mutex
	subjects []string
}

func (a *capturingAlerts) Alert(_ context.Context, subject, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subjects = append(a.subjects, subject)
}
