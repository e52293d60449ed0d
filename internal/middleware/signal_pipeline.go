package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"GhostSniper/internal/domain/models"
	domrepo "GhostSniper/internal/domain/repository"
)

// Proc is the downstream the pipeline feeds.
type Proc interface {
	Process(ctx context.Context, s models.Signal) error
}

// SignalPipeline sits between scoring and the engine's emit step. It
// validates signals and throttles bursts of the same identity at the same
// score. A score change always passes through.
type SignalPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	mu       sync.Mutex
	lastSeen map[string]time.Time // identity+score -> last accepted time
}

type PipelineOption func(*SignalPipeline)

// WithMaxRPS sets the max signals per second per identity and score. Zero disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

func NewSignalPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *SignalPipeline {
	p := &SignalPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   5,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates, throttles and forwards s. Throttled signals are dropped
// without error.
func (p *SignalPipeline) Process(ctx context.Context, s models.Signal) error {
	start := time.Now()
	if err := validateSignal(s); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(throttleKey(s), start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}
	if err := p.proc.Process(ctx, s); err != nil {
		p.metrics.RecordError("pipeline_process")
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateSignal(s models.Signal) error {
	m := s.Metrics
	switch {
	case s.TokenIdentity == "":
		return fmt.Errorf("token identity empty")
	case m.LiquidityUSD < 0 || m.Volume5m < 0 || m.MarketCapUSD < 0 || m.PriceUSD < 0:
		return fmt.Errorf("negative metric for %s", s.TokenIdentity)
	case m.Buys5m < 0 || m.Sells5m < 0:
		return fmt.Errorf("negative txn count for %s", s.TokenIdentity)
	case math.IsNaN(m.PriceChange5m) || math.IsInf(m.PriceChange5m, 0):
		return fmt.Errorf("price change not finite for %s", s.TokenIdentity)
	}
	return nil
}

func throttleKey(s models.Signal) string {
	return s.Key() + "#" + strconv.Itoa(s.Score)
}

func (p *SignalPipeline) allow(key string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[key]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[key] = now
	return true
}

// Reset forgets throttle history, used when a feed session restarts.
func (p *SignalPipeline) Reset() {
	p.mu.Lock()
	p.lastSeen = make(map[string]time.Time)
	p.mu.Unlock()
}
