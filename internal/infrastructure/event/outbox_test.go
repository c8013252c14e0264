package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

func newTestEntry(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	tenantID := uuid.New()
	evt := inventory.NewStockRestockedEvent(tenantID, uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(10))
	return shared.NewOutboxEntry(tenantID, evt, []byte(`{}`))
}

func TestOutboxEntry_Lifecycle(t *testing.T) {
	entry := newTestEntry(t)
	assert.Equal(t, shared.OutboxStatusPending, entry.Status)
	assert.Equal(t, shared.DefaultMaxRetries, entry.MaxRetries)

	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, shared.OutboxStatusProcessing, entry.Status)

	entry.MarkSent()
	assert.Equal(t, shared.OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)

	// sent entries cannot be claimed again
	assert.Error(t, entry.MarkProcessing())
}

func TestOutboxEntry_BackoffDoublesAndCaps(t *testing.T) {
	entry := newTestEntry(t)

	expected := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 64 * time.Second, 128 * time.Second,
		256 * time.Second,
	}
	for i, want := range expected {
		entry.MarkFailed("publish failed")
		require.Equal(t, shared.OutboxStatusFailed, entry.Status, "attempt %d", i+1)
		require.NotNil(t, entry.NextRetryAt)
		got := time.Until(*entry.NextRetryAt)
		assert.InDelta(t, want.Seconds(), got.Seconds(), 1, "attempt %d", i+1)
		if want > shared.MaxBackoff {
			assert.LessOrEqual(t, got, shared.MaxBackoff+time.Second)
		}
	}
}

func TestOutboxEntry_DeadLetterAfterMaxRetries(t *testing.T) {
	entry := newTestEntry(t)

	for i := 0; i < shared.DefaultMaxRetries; i++ {
		entry.MarkFailed("publish failed")
	}
	assert.True(t, entry.IsDead())
	assert.Equal(t, shared.DefaultMaxRetries, entry.RetryCount)
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	entry := newTestEntry(t)

	// only dead entries can be reset
	assert.Error(t, entry.ResetForRetry())

	for i := 0; i < shared.DefaultMaxRetries; i++ {
		entry.MarkFailed("publish failed")
	}
	require.True(t, entry.IsDead())

	require.NoError(t, entry.ResetForRetry())
	assert.Equal(t, shared.OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Empty(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
}
