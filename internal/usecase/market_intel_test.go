package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/internal/service/cache"
)

type stubSource struct {
	name  string
	val   any
	err   error
	calls atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, string) (any, error) {
	s.calls.Add(1)
	return s.val, s.err
}

func TestSnapshotMergesResultsAndErrors(t *testing.T) {
	ok := &stubSource{name: "dexscreener", val: []string{"PAIR"}}
	bad := &stubSource{name: "coingecko", err: errors.New("429")}
	mi := NewMarketIntel(map[string][]drepo.MarketSource{"sol": {ok, bad}}, nil, 0, nil, nil)

	snap, err := mi.Snapshot(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, "sol", snap.Chain)
	assert.Equal(t, []string{"PAIR"}, snap.Data["dexscreener"])
	assert.Equal(t, "429", snap.Errors["coingecko"])
}

func TestSnapshotUsesCache(t *testing.T) {
	src := &stubSource{name: "pumpfun", val: map[string]any{"n": 1.0}}
	mi := NewMarketIntel(map[string][]drepo.MarketSource{"sol": {src}}, cache.NewTTLCache(), time.Minute, nil, nil)

	_, err := mi.Snapshot(context.Background(), "sol")
	require.NoError(t, err)
	snap, err := mi.Snapshot(context.Background(), "sol")
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, map[string]any{"n": 1.0}, snap.Data["pumpfun"])
}

func TestSnapshotUnknownChain(t *testing.T) {
	mi := NewMarketIntel(map[string][]drepo.MarketSource{}, nil, 0, nil, nil)
	_, err := mi.Snapshot(context.Background(), "btc")
	assert.Error(t, err)
}

type chainEcho struct{}

func (chainEcho) Name() string { return "echo" }

func (chainEcho) Fetch(_ context.Context, chain string) (any, error) { return chain, nil }

func TestBindChainPinsFeedChain(t *testing.T) {
	intel := NewMarketIntel(map[string][]drepo.MarketSource{
		"sol": {BindChain(chainEcho{}, "solana", false)},
		"all": {BindChain(chainEcho{}, "solana", true), BindChain(chainEcho{}, "ethereum", true)},
	}, nil, 0, nil, nil)

	snap, err := intel.Snapshot(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, "solana", snap.Data["echo"])

	snap, err = intel.Snapshot(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "solana", snap.Data["echo:solana"])
	assert.Equal(t, "ethereum", snap.Data["echo:ethereum"])
	assert.ElementsMatch(t, []string{"sol"}, intel.Chains())
}
