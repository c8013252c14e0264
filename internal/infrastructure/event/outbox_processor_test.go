package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

type memoryOutboxRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newMemoryOutboxRepo() *memoryOutboxRepo {
	return &memoryOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *memoryOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *memoryOutboxRepo) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && e.NextRetryAt.Before(before) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryOutboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOutboxRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*shared.OutboxEntry
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if e.Status == shared.OutboxStatusPending || e.Status == shared.OutboxStatusFailed {
			e.Status = shared.OutboxStatusProcessing
			claimed = append(claimed, e)
		}
	}
	return claimed, nil
}

func (r *memoryOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *memoryOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryOutboxRepo) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *memoryOutboxRepo) status(id uuid.UUID) shared.OutboxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].Status
}

var _ shared.OutboxRepository = (*memoryOutboxRepo)(nil)

func newProcessorFixture(t *testing.T) (*OutboxProcessor, *memoryOutboxRepo, *InMemoryEventBus, *EventSerializer) {
	t.Helper()
	repo := newMemoryOutboxRepo()
	bus := NewInMemoryEventBus(zap.NewNop())
	serializer := NewEventSerializer()
	RegisterDomainEvents(serializer)

	proc := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	return proc, repo, bus, serializer
}

func saveEntry(t *testing.T, repo *memoryOutboxRepo, serializer *EventSerializer, evt shared.DomainEvent) *shared.OutboxEntry {
	t.Helper()
	payload, err := serializer.Serialize(evt)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(evt.TenantID(), evt, payload)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestOutboxProcessor_DeliversPendingEntries(t *testing.T) {
	proc, repo, bus, serializer := newProcessorFixture(t)

	handler := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	bus.Subscribe(handler)

	entry := saveEntry(t, repo, serializer, newTrackingChangedEvent(t))

	proc.processBatch(context.Background())

	assert.Equal(t, 1, handler.count())
	assert.Equal(t, shared.OutboxStatusSent, repo.status(entry.ID))
}

func TestOutboxProcessor_UnknownEventTypeFails(t *testing.T) {
	proc, repo, _, _ := newProcessorFixture(t)

	// an event type nothing registered: payload cannot be rehydrated
	evt := newTrackingChangedEvent(t)
	entry := shared.NewOutboxEntry(evt.TenantID(), evt, []byte(`{}`))
	entry.EventType = "order.unknown"
	require.NoError(t, repo.Save(context.Background(), entry))

	proc.processBatch(context.Background())

	assert.Equal(t, shared.OutboxStatusFailed, repo.status(entry.ID))
	assert.Equal(t, 1, repo.entries[entry.ID].RetryCount)
}

func TestOutboxProcessor_RetryableEntriesPickedUp(t *testing.T) {
	proc, repo, bus, serializer := newProcessorFixture(t)

	handler := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	bus.Subscribe(handler)

	entry := saveEntry(t, repo, serializer, newTrackingChangedEvent(t))
	entry.MarkFailed("transient failure")
	past := time.Now().Add(-time.Minute)
	entry.NextRetryAt = &past
	require.NoError(t, repo.Update(context.Background(), entry))

	proc.processBatch(context.Background())

	assert.Equal(t, 1, handler.count())
	assert.Equal(t, shared.OutboxStatusSent, repo.status(entry.ID))
}

func TestOutboxProcessor_CleanupRemovesOldSentEntries(t *testing.T) {
	proc, repo, _, serializer := newProcessorFixture(t)

	entry := saveEntry(t, repo, serializer, newTrackingChangedEvent(t))
	entry.MarkSent()
	old := time.Now().Add(-30 * 24 * time.Hour)
	entry.ProcessedAt = &old
	require.NoError(t, repo.Update(context.Background(), entry))

	proc.cleanup(context.Background())

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts[shared.OutboxStatusSent])
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	proc, _, _, _ := newProcessorFixture(t)

	require.NoError(t, proc.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, proc.Stop(ctx))
}
