package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	domsvc "GhostSniper/internal/domain/service"
	mid "GhostSniper/internal/middleware"
	"GhostSniper/pkg/logger"
)

// SignalEngine keeps one subscription to a push feed alive, scores every
// message and publishes signals. Within a session an identity is re-signaled
// only when its score changes; the memory resets on every (re)connect.
type SignalEngine struct {
	feed       drepo.PushFeed
	normalizer domsvc.Normalizer
	scorer     domsvc.SignalScorer
	reporter   *Reporter
	metrics    drepo.Metrics
	log        *logger.Logger
	pipe       *mid.SignalPipeline
	minScore   int
	backoff    time.Duration

	mu        sync.Mutex
	lastScore map[string]int
	cancel    context.CancelFunc
	done      chan struct{}

	connected   atomic.Bool
	sessions    atomic.Int64
	emitted     atomic.Int64
	duplicates  atomic.Int64
	parseErrors atomic.Int64
}

type EngineOption func(*SignalEngine)

func WithMinScore(n int) EngineOption { return func(e *SignalEngine) { e.minScore = n } }

func WithReconnectBackoff(d time.Duration) EngineOption {
	return func(e *SignalEngine) {
		if d > 0 {
			e.backoff = d
		}
	}
}

// WithPipelineOptions configures the throttle pipeline in front of emission.
func WithPipelineOptions(opts ...mid.PipelineOption) EngineOption {
	return func(e *SignalEngine) { e.pipe = mid.NewSignalPipeline(e, e.metrics, opts...) }
}

func NewSignalEngine(feed drepo.PushFeed, normalizer domsvc.Normalizer, scorer domsvc.SignalScorer, reporter *Reporter, metrics drepo.Metrics, log *logger.Logger, opts ...EngineOption) *SignalEngine {
	if log == nil {
		log = logger.Nop()
	}
	e := &SignalEngine{
		feed:       feed,
		normalizer: normalizer,
		scorer:     scorer,
		reporter:   reporter.Detached(),
		metrics:    metricsOrNop(metrics),
		log:        log.Named("engine"),
		backoff:    3 * time.Second,
		lastScore:  make(map[string]int),
	}
	e.pipe = mid.NewSignalPipeline(e, e.metrics)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start runs the engine in the background until Stop or ctx cancellation.
func (e *SignalEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx, e.done)
	return nil
}

func (e *SignalEngine) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	first := true
	for ctx.Err() == nil {
		if err := e.open(ctx, first); err != nil {
			if ctx.Err() != nil {
				return
			}
			e.metrics.RecordError("engine_connect")
			e.log.Warn("feed connect failed", logger.Error(err), logger.Duration("retry_in", e.backoff))
			if !sleepCtx(ctx, e.backoff) {
				return
			}
			continue
		}
		first = false
		e.beginSession()
		items, errs := e.feed.Read(ctx)
		err := e.consume(ctx, items, errs)
		e.connected.Store(false)
		if ctx.Err() != nil {
			return
		}
		e.metrics.RecordError("engine_stream")
		e.log.Warn("feed session ended", logger.Error(err), logger.Int64("session", e.sessions.Load()))
		if !sleepCtx(ctx, e.backoff) {
			return
		}
	}
}

func (e *SignalEngine) open(ctx context.Context, first bool) error {
	if !first {
		return e.feed.Reconnect(ctx)
	}
	if err := e.feed.Connect(ctx); err != nil {
		return err
	}
	return e.feed.Subscribe(ctx)
}

func (e *SignalEngine) beginSession() {
	e.mu.Lock()
	e.lastScore = make(map[string]int)
	e.mu.Unlock()
	e.pipe.Reset()
	n := e.sessions.Add(1)
	e.connected.Store(true)
	e.log.Info("feed session started", logger.Int64("session", n))
}

func (e *SignalEngine) consume(ctx context.Context, items <-chan models.RawItem, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return err
			}
		case item, ok := <-items:
			if !ok {
				return errFeedClosed
			}
			e.handle(ctx, item)
		}
	}
}

func (e *SignalEngine) handle(ctx context.Context, item models.RawItem) {
	sig, err := e.normalizer.Normalize(item)
	if err != nil {
		e.parseErrors.Add(1)
		e.metrics.RecordError("engine_parse")
		e.log.Debug("drop feed item", logger.String("format", item.Format), logger.Error(err))
		return
	}
	sig.Score = e.scorer.Score(sig.Metrics)
	if sig.Score < e.minScore {
		return
	}
	if err := e.pipe.Process(ctx, sig); err != nil {
		e.log.Debug("pipeline rejected signal", logger.String("token", sig.TokenIdentity), logger.Error(err))
	}
}

// Process is the pipeline's downstream: dedup then publish.
func (e *SignalEngine) Process(_ context.Context, sig models.Signal) error {
	key := sig.Key()
	e.mu.Lock()
	prev, seen := e.lastScore[key]
	if seen && prev == sig.Score {
		e.mu.Unlock()
		e.duplicates.Add(1)
		e.metrics.RecordDuplicate(sig.SourceID)
		return nil
	}
	e.lastScore[key] = sig.Score
	e.mu.Unlock()

	e.emitted.Add(1)
	e.metrics.RecordSignal(sig.SourceID, sig.Score)
	e.reporter.Publish(models.NewEvent(models.EventSignal, sig))
	return nil
}

func (e *SignalEngine) Status() models.EngineStatus {
	return models.EngineStatus{
		Connected:   e.connected.Load(),
		Sessions:    e.sessions.Load(),
		Signals:     e.emitted.Load(),
		Duplicates:  e.duplicates.Load(),
		ParseErrors: e.parseErrors.Load(),
	}
}

func (e *SignalEngine) IsConnected() bool { return e.connected.Load() }

// Stop cancels the session loop, waits for it and closes the feed.
func (e *SignalEngine) Stop() error {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return e.feed.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var errFeedClosed = errors.New("feed stream closed")
