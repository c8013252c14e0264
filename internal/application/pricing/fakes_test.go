package pricing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

type fakeTierRepo struct {
	tiers []*pricing.DiscountTier
}

func (r *fakeTierRepo) Save(_ context.Context, tier *pricing.DiscountTier) error {
	r.tiers = append(r.tiers, tier)
	return nil
}

func (r *fakeTierRepo) FindByIDForTenant(_ context.Context, id, _ uuid.UUID) (*pricing.DiscountTier, error) {
	for _, t := range r.tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTierRepo) ListActive(_ context.Context, _ uuid.UUID) ([]*pricing.DiscountTier, error) {
	var out []*pricing.DiscountTier
	for _, t := range r.tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeDynamicRepo struct {
	factors []*pricing.DynamicDiscount
}

func (r *fakeDynamicRepo) Save(_ context.Context, d *pricing.DynamicDiscount) error {
	r.factors = append(r.factors, d)
	return nil
}

func (r *fakeDynamicRepo) FindActiveForSubjects(_ context.Context, _ uuid.UUID, organizationID, areaID uuid.UUID) (*pricing.DynamicDiscount, error) {
	var areaMatch *pricing.DynamicDiscount
	for _, d := range r.factors {
		if !d.IsActive {
			continue
		}
		if d.Scope == pricing.ScopeOrganization && d.SubjectID == organizationID {
			return d, nil
		}
		if d.Scope == pricing.ScopeArea && d.SubjectID == areaID && areaMatch == nil {
			areaMatch = d
		}
	}
	if areaMatch != nil {
		return areaMatch, nil
	}
	return nil, shared.ErrNotFound
}

type fakeCreditRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*pricing.CreditEntry
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{entries: make(map[uuid.UUID]*pricing.CreditEntry)}
}

func (r *fakeCreditRepo) Save(_ context.Context, entry *pricing.CreditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeCreditRepo) SaveWithLock(ctx context.Context, entry *pricing.CreditEntry) error {
	entry.IncrementVersion()
	return r.Save(ctx, entry)
}

func (r *fakeCreditRepo) FindByIDForTenant(_ context.Context, id, _ uuid.UUID) (*pricing.CreditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

func (r *fakeCreditRepo) FindByOrder(_ context.Context, orderID, _ uuid.UUID) (*pricing.CreditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.OrderID == orderID {
			return entry, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCreditRepo) ListOverdue(_ context.Context, _ uuid.UUID) ([]*pricing.CreditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pricing.CreditEntry
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	return out, nil
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

func (r *fakeOrderRepo) FindBySource(_ context.Context, _, _ uuid.UUID, _ order.OrderKind) (*order.Order, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) ListByGroup(_ context.Context, _, _ uuid.UUID) ([]*order.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) ListByKind(_ context.Context, _ uuid.UUID, _ order.OrderKind, _, _ int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) ListInFlightBySupplier(_ context.Context, _, _ uuid.UUID) ([]*order.Order, error) {
	return nil, nil
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

func mustTier(tenantID uuid.UUID, min int64, percent string) *pricing.DiscountTier {
	p, _ := decimal.NewFromString(percent)
	tier, err := pricing.NewDiscountTier(tenantID, decimal.NewFromInt(min), p)
	if err != nil {
		panic(err)
	}
	return tier
}
