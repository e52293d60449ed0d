package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/internal/service/cache"
	"GhostSniper/pkg/logger"
)

// MarketIntel fans out to market sources concurrently and merges their
// answers. Per-source failures land in Errors; the snapshot itself succeeds.
type MarketIntel struct {
	sources map[string][]drepo.MarketSource // chain -> sources
	cache   cache.BytesCache
	ttl     time.Duration
	timeout time.Duration
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewMarketIntel(sources map[string][]drepo.MarketSource, c cache.BytesCache, ttl time.Duration, metrics drepo.Metrics, log *logger.Logger) *MarketIntel {
	if log == nil {
		log = logger.Nop()
	}
	return &MarketIntel{
		sources: sources,
		cache:   c,
		ttl:     ttl,
		timeout: 10 * time.Second,
		metrics: metricsOrNop(metrics),
		log:     log.Named("intel"),
	}
}

// Chains lists the chains with at least one source, "all" excluded.
func (m *MarketIntel) Chains() []string {
	return lo.Filter(lo.Keys(m.sources), func(c string, _ int) bool { return c != "all" })
}

func (m *MarketIntel) Snapshot(ctx context.Context, chain string) (models.MarketSnapshot, error) {
	srcs, ok := m.sources[chain]
	if !ok {
		return models.MarketSnapshot{}, fmt.Errorf("no market sources for chain %q", chain)
	}

	key := "snapshot:" + chain
	if snap, ok := m.cached(ctx, key); ok {
		return snap, nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	snap := models.MarketSnapshot{
		Chain:     chain,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{},
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  any
		err  error
	}
	ch := make(chan item, len(srcs))
	var wg sync.WaitGroup
	for _, src := range srcs {
		wg.Add(1)
		go func(src drepo.MarketSource) {
			defer wg.Done()
			v, err := src.Fetch(ctx, chain)
			ch <- item{src.Name(), v, err}
		}(src)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			snap.Errors[it.name] = it.err.Error()
			m.metrics.RecordError("intel_" + it.name)
			continue
		}
		snap.Data[it.name] = it.val
	}
	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}
	m.metrics.RecordLatency("market_snapshot", time.Since(start).Seconds())

	if len(snap.Data) > 0 {
		m.store(ctx, key, snap)
	}
	return snap, nil
}

func (m *MarketIntel) cached(ctx context.Context, key string) (models.MarketSnapshot, bool) {
	if m.cache == nil || m.ttl <= 0 {
		return models.MarketSnapshot{}, false
	}
	b, ok, err := m.cache.GetBytes(ctx, key)
	if err != nil {
		m.log.Warn("snapshot cache read failed", logger.String("key", key), logger.Error(err))
		return models.MarketSnapshot{}, false
	}
	if !ok {
		return models.MarketSnapshot{}, false
	}
	var snap models.MarketSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return models.MarketSnapshot{}, false
	}
	return snap, true
}

func (m *MarketIntel) store(ctx context.Context, key string, snap models.MarketSnapshot) {
	if m.cache == nil || m.ttl <= 0 {
		return
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := m.cache.SetBytes(ctx, key, b, m.ttl); err != nil {
		m.log.Warn("snapshot cache write failed", logger.String("key", key), logger.Error(err))
	}
}

type boundSource struct {
	src   drepo.MarketSource
	chain string
	name  string
}

// BindChain pins src to a feed chain name so it can be registered under a
// routing chain key such as "sol" or "all". The section is named
// "<source>:<chain>" when qualify is set.
func BindChain(src drepo.MarketSource, chain string, qualify bool) drepo.MarketSource {
	name := src.Name()
	if qualify && chain != "" {
		name += ":" + chain
	}
	return &boundSource{src: src, chain: chain, name: name}
}

func (b *boundSource) Name() string { return b.name }

func (b *boundSource) Fetch(ctx context.Context, _ string) (any, error) {
	return b.src.Fetch(ctx, b.chain)
}
