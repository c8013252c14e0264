package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*memoryIdempotencyStore)(nil)

func TestIdempotentHandler_ProcessesOnce(t *testing.T) {
	inner := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())

	evt := newTrackingChangedEvent(t)
	require.NoError(t, handler.Handle(context.Background(), evt))
	require.NoError(t, handler.Handle(context.Background(), evt))

	assert.Equal(t, 1, inner.count())
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_DistinctEventsBothProcess(t *testing.T) {
	inner := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTrackingChangedEvent(t)))
	require.NoError(t, handler.Handle(context.Background(), newTrackingChangedEvent(t)))
	assert.Equal(t, 2, inner.count())
}

func TestIdempotentHandler_StoreFailureProcessesAnyway(t *testing.T) {
	inner := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	store := newMemoryIdempotencyStore()
	store.err = errors.New("redis down")
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTrackingChangedEvent(t)))
	assert.Equal(t, 1, inner.count())
}

func TestIdempotentHandler_HandlerErrorPropagates(t *testing.T) {
	inner := &recordingHandler{
		eventTypes: []string{order.EventTypeOrderTrackingChanged},
		err:        errors.New("handler failed"),
	}
	handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())

	err := handler.Handle(context.Background(), newTrackingChangedEvent(t))
	require.Error(t, err)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := &recordingHandler{eventTypes: []string{order.EventTypeOrderTrackingChanged}}
	handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	evt := newTrackingChangedEvent(t)
	require.NoError(t, handler.Handle(context.Background(), evt))
	require.NoError(t, handler.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.count())
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	handlers := []shared.EventHandler{
		&recordingHandler{eventTypes: []string{order.EventTypeOrderPlaced}},
		&recordingHandler{eventTypes: []string{order.EventTypeOrderCompleted}},
	}
	wrapped := WrapHandlersWithIdempotency(handlers, newMemoryIdempotencyStore(), zap.NewNop())

	require.Len(t, wrapped, 2)
	assert.Equal(t, []string{order.EventTypeOrderPlaced}, wrapped[0].EventTypes())
	assert.Equal(t, []string{order.EventTypeOrderCompleted}, wrapped[1].EventTypes())
}
