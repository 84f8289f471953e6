package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/metrics"
	"github.com/roach88/craftledger/internal/model"
)

type recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recorder) Notify(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recorder) items() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.alerts))
	for i, a := range r.alerts {
		out[i] = a.Item
	}
	return out
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec)

	for _, item := range []string{"Wood", "Nails", "Chair"} {
		require.True(t, d.Dispatch(Alert{Kind: model.KindMaterial, Item: item}))
	}
	d.Close()

	assert.Equal(t, []string{"Wood", "Nails", "Chair"}, rec.items())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	blocking := NotifierFunc(func(ctx context.Context, a Alert) error {
		started <- struct{}{}
		<-release
		return nil
	})

	m := metrics.New(prometheus.NewRegistry())
	d := NewDispatcher(blocking, WithQueueSize(1), WithMetrics(m))

	require.True(t, d.Dispatch(Alert{Item: "first"}))
	<-started // worker holds "first"; queue is empty again
	require.True(t, d.Dispatch(Alert{Item: "second"}))
	assert.False(t, d.Dispatch(Alert{Item: "third"}), "queue of one is full")

	close(release)
	d.Close()

	assert.Equal(t, 2.0, promtest.ToFloat64(metricAlerts(t, m, metrics.AlertDelivered)))
	assert.Equal(t, 1.0, promtest.ToFloat64(metricAlerts(t, m, metrics.AlertDropped)))
}

func TestDispatcher_TimeoutBoundsNotify(t *testing.T) {
	var gotErr error
	var mu sync.Mutex
	slow := NotifierFunc(func(ctx context.Context, a Alert) error {
		<-ctx.Done()
		mu.Lock()
		gotErr = ctx.Err()
		mu.Unlock()
		return ctx.Err()
	})

	d := NewDispatcher(slow, WithTimeout(10*time.Millisecond))
	require.True(t, d.Dispatch(Alert{Item: "Wood"}))
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, gotErr, context.DeadlineExceeded)
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	rec := &recorder{}
	calls := 0
	flaky := NotifierFunc(func(ctx context.Context, a Alert) error {
		calls++
		if calls == 1 {
			return errors.New("channel down")
		}
		return rec.Notify(ctx, a)
	})

	d := NewDispatcher(flaky)
	d.Dispatch(Alert{Item: "Wood"})
	d.Dispatch(Alert{Item: "Nails"})
	d.Close()

	assert.Equal(t, []string{"Nails"}, rec.items())
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	d := NewDispatcher(&recorder{})
	d.Close()
	d.Close()

	assert.False(t, d.Dispatch(Alert{Item: "Wood"}))
}

func metricAlerts(t *testing.T, m *metrics.Metrics, outcome string) prometheus.Collector {
	t.Helper()
	c, err := m.AlertCounter(outcome)
	require.NoError(t, err)
	return c
}
