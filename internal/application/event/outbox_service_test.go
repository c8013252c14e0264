package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

type fakeOutboxRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *fakeOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeOutboxRepo) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	total := int64(len(dead))

	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(dead) {
		end = len(dead)
	}
	return dead[start:end], total, nil
}

func (r *fakeOutboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOutboxRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*fakeOutboxRepo)(nil)

func newDeadEntry(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	tenantID := uuid.New()
	evt := inventory.NewStockRestockedEvent(tenantID, uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(5))
	entry := shared.NewOutboxEntry(tenantID, evt, []byte(`{}`))
	for i := 0; i < entry.MaxRetries; i++ {
		entry.MarkFailed("delivery failed")
	}
	require.True(t, entry.IsDead())
	return entry
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	repo := newFakeOutboxRepo()
	svc := NewOutboxService(repo, zap.NewNop())

	require.NoError(t, repo.Save(context.Background(), newDeadEntry(t), newDeadEntry(t)))

	result, err := svc.GetDeadLetterEntries(context.Background(), OutboxFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	repo := newFakeOutboxRepo()
	svc := NewOutboxService(repo, zap.NewNop())

	entry := newDeadEntry(t)
	require.NoError(t, repo.Save(context.Background(), entry))

	view, err := svc.RetryDeadEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, string(shared.OutboxStatusPending), view.Status)
	assert.Zero(t, view.RetryCount)
}

func TestOutboxService_RetryDeadEntryNotDead(t *testing.T) {
	repo := newFakeOutboxRepo()
	svc := NewOutboxService(repo, zap.NewNop())

	tenantID := uuid.New()
	evt := inventory.NewStockRestockedEvent(tenantID, uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(5))
	entry := shared.NewOutboxEntry(tenantID, evt, []byte(`{}`))
	require.NoError(t, repo.Save(context.Background(), entry))

	_, err := svc.RetryDeadEntry(context.Background(), entry.ID)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "INVALID_STATE"))
}

func TestOutboxService_RetryDeadEntryMissing(t *testing.T) {
	svc := NewOutboxService(newFakeOutboxRepo(), zap.NewNop())

	_, err := svc.RetryDeadEntry(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "NOT_FOUND"))
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	repo := newFakeOutboxRepo()
	svc := NewOutboxService(repo, zap.NewNop())

	require.NoError(t, repo.Save(context.Background(), newDeadEntry(t), newDeadEntry(t), newDeadEntry(t)))

	count, err := svc.RetryAllDeadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[shared.OutboxStatusPending])
	assert.Zero(t, counts[shared.OutboxStatusDead])
}

func TestOutboxService_GetStats(t *testing.T) {
	repo := newFakeOutboxRepo()
	svc := NewOutboxService(repo, zap.NewNop())

	tenantID := uuid.New()
	evt := inventory.NewStockRestockedEvent(tenantID, uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(5))
	pending := shared.NewOutboxEntry(tenantID, evt, []byte(`{}`))
	require.NoError(t, repo.Save(context.Background(), pending, newDeadEntry(t)))

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(2), stats.Total)
}
