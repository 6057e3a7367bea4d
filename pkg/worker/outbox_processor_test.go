package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	"github.com/jwalitptl/health-navigator/pkg/logger"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

type flakyBroker struct {
	mu        sync.Mutex
	failures  int
	published map[string][][]byte
}

func (b *flakyBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if b.published == nil {
		b.published = map[string][][]byte{}
	}
	b.published[channel] = append(b.published[channel], data)
	return nil
}

func (b *flakyBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *flakyBroker) Close() error { return nil }

func seedEvent(t *testing.T, store *repotest.Store, eventType string) *model.OutboxEvent {
	t.Helper()
	ev, err := model.NewOutboxEvent(eventType, map[string]string{"id": "x"})
	require.NoError(t, err)
	require.NoError(t, store.Patients().Create(context.Background(), &model.Patient{ProfileID: uuid.New()}, ev))
	return ev
}

func newProcessor(t *testing.T, store *repotest.Store, broker messaging.Broker, attempts int) *OutboxProcessor {
	t.Helper()
	p, err := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard}), metrics.NewMetrics("test"))
	require.NoError(t, err)
	return p
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	store := repotest.NewStore()
	ev := seedEvent(t, store, messaging.ChannelPatientLinked)
	broker := &flakyBroker{failures: 1}

	n, err := newProcessor(t, store, broker, 2).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, broker.published[messaging.ChannelPatientLinked], 1)
	var msg struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(broker.published[messaging.ChannelPatientLinked][0], &msg))
	assert.Equal(t, messaging.ChannelPatientLinked, msg.Type)
	assert.Equal(t, "x", msg.Payload["id"])

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
	assert.Equal(t, model.OutboxStatusProcessed, events[0].Status)
	assert.NotNil(t, events[0].ProcessedAt)
}

func TestProcessBatchMarksFailedAfterRetries(t *testing.T) {
	store := repotest.NewStore()
	seedEvent(t, store, messaging.ChannelEmergencyRaised)
	broker := &flakyBroker{failures: 5}

	n, err := newProcessor(t, store, broker, 3).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	events := store.OutboxEvents()
	assert.Equal(t, model.OutboxStatusFailed, events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Contains(t, *events[0].ErrorMessage, "broker unavailable")
	assert.Equal(t, 2, broker.failures)
}

func TestProcessBatchRepositoryError(t *testing.T) {
	store := repotest.NewStore()
	store.Fail("outbox.pending", errors.New("db down"), 1)

	_, err := newProcessor(t, store, &flakyBroker{}, 1).ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestNewOutboxProcessorRejectsBadConfig(t *testing.T) {
	_, err := NewOutboxProcessor(nil, nil, OutboxProcessorConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestCleanupRemovesOldProcessedEvents(t *testing.T) {
	store := repotest.NewStore()
	seedEvent(t, store, messaging.ChannelAppointmentBooked)
	_, err := newProcessor(t, store, &flakyBroker{}, 1).ProcessBatch(context.Background())
	require.NoError(t, err)

	w := NewOutboxCleanupWorker(store.Outbox(), -time.Minute, time.Hour,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard}))
	assert.Equal(t, int64(1), w.RunOnce(context.Background()))
	assert.Empty(t, store.OutboxEvents())
}
