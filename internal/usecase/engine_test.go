package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
	mid "GhostSniper/internal/middleware"
	"GhostSniper/internal/services/signals"
)

// fakeFeed hands out one items channel per session; tests push into the
// current one and end sessions with fail.
type fakeFeed struct {
	mu        sync.Mutex
	items     chan models.RawItem
	errs      chan error
	sessions  chan struct{}
	connected bool
}

func newFakeFeed() *fakeFeed { return &fakeFeed{sessions: make(chan struct{}, 8)} }

func (f *fakeFeed) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(chan models.RawItem, 16)
	f.errs = make(chan error, 1)
	f.connected = true
	return nil
}

func (f *fakeFeed) Subscribe(context.Context) error {
	f.sessions <- struct{}{}
	return nil
}

func (f *fakeFeed) Read(context.Context) (<-chan models.RawItem, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.errs
}

func (f *fakeFeed) Reconnect(ctx context.Context) error {
	if err := f.Connect(ctx); err != nil {
		return err
	}
	return f.Subscribe(ctx)
}

func (f *fakeFeed) Close() error {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	return nil
}

func (f *fakeFeed) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeFeed) push(item models.RawItem) {
	f.mu.Lock()
	ch := f.items
	f.mu.Unlock()
	ch <- item
}

func (f *fakeFeed) fail(err error) {
	f.mu.Lock()
	ch := f.errs
	f.mu.Unlock()
	ch <- err
}

func startEngine(t *testing.T, opts ...EngineOption) (*SignalEngine, *fakeFeed, *recordingBus) {
	t.Helper()
	feed := newFakeFeed()
	bus := &recordingBus{}
	rep := NewReporter(nil, bus, nil)
	opts = append([]EngineOption{WithReconnectBackoff(time.Millisecond)}, opts...)
	e := NewSignalEngine(feed, signals.NewNormalizer(), signals.NewScorer(), rep, nil, nil, opts...)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop() })
	waitSession(t, feed)
	return e, feed, bus
}

func waitSession(t *testing.T, feed *fakeFeed) {
	t.Helper()
	select {
	case <-feed.sessions:
	case <-time.After(time.Second):
		t.Fatal("feed session did not start")
	}
}

func eventuallySignals(t *testing.T, bus *recordingBus, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(bus.OfType(models.EventSignal)) == n }, time.Second, 2*time.Millisecond)
}

func TestEngineDedupUntilScoreChanges(t *testing.T) {
	e, feed, bus := startEngine(t, WithPipelineOptions(mid.WithMaxRPS(0)))

	feed.push(genericItem("AAA", 1_000))
	feed.push(genericItem("AAA", 1_000))
	eventuallySignals(t, bus, 1)

	feed.push(genericItem("AAA", 25_000)) // score changes
	eventuallySignals(t, bus, 2)

	feed.push(genericItem("AAA", 25_000))
	feed.push(genericItem("BBB", 25_000))
	eventuallySignals(t, bus, 3)

	st := e.Status()
	assert.Equal(t, int64(3), st.Signals)
	assert.Equal(t, int64(2), st.Duplicates)
	assert.True(t, st.Connected)
}

func TestEngineDefaultThrottleKeepsScoreChanges(t *testing.T) {
	e, feed, bus := startEngine(t)

	feed.push(genericItem("AAA", 1_000))
	feed.push(genericItem("AAA", 25_000))
	eventuallySignals(t, bus, 2)

	feed.push(genericItem("AAA", 25_000))
	feed.push(genericItem("BBB", 1_000))
	eventuallySignals(t, bus, 3)

	sigs := bus.OfType(models.EventSignal)
	assert.NotEqual(t, sigs[0].Payload.(models.Signal).Score, sigs[1].Payload.(models.Signal).Score)
	assert.Equal(t, int64(3), e.Status().Signals)
}

func TestEngineResetsDedupOnReconnect(t *testing.T) {
	e, feed, bus := startEngine(t)

	feed.push(genericItem("AAA", 1_000))
	eventuallySignals(t, bus, 1)

	feed.fail(errors.New("socket closed"))
	waitSession(t, feed)

	feed.push(genericItem("AAA", 1_000))
	eventuallySignals(t, bus, 2)
	assert.Equal(t, int64(2), e.Status().Sessions)
}

func TestEngineCountsParseErrors(t *testing.T) {
	e, feed, bus := startEngine(t)

	feed.push(models.RawItem{Format: models.FormatGeneric, Payload: []byte(`{"symbol":"NOID"}`)})
	feed.push(genericItem("OK", 1_000))
	eventuallySignals(t, bus, 1)
	assert.Equal(t, int64(1), e.Status().ParseErrors)
}
