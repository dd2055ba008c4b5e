package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "keepsake/pkg/platform/audit"
	"keepsake/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := New(store, WithMetrics(metrics))

	err := pub.Emit(context.Background(), audit.Event{
		Action:   string(audit.EventRecordUnlocked),
		RecordID: 3,
	})
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsEmitted))
}

func TestPublisher_RejectsMissingAction(t *testing.T) {
	pub := New(memory.NewInMemoryStore())
	assert.Error(t, pub.Emit(context.Background(), audit.Event{RecordID: 1}))
}

func TestPublisher_FailsClosed(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := New(failingStore{}, WithMetrics(metrics))

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOwnershipChanged)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PersistFailures))
}
