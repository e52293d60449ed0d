package middleware

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

type countingProc struct {
	got []models.Signal
	err error
}

func (c *countingProc) Process(_ context.Context, s models.Signal) error {
	c.got = append(c.got, s)
	return c.err
}

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string, int) {}
func (nopMetrics) RecordDuplicate(string) {}
func (nopMetrics) RecordTrade(string, string) {}
func (nopMetrics) RecordBotState(string, models.BotState) {}
func (nopMetrics) RecordSubscribers(int) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordLatency(string, float64) {}

func sig(token string, score int) models.Signal {
	return models.Signal{SourceID: "pumpportal", TokenIdentity: token, Score: score}
}

func TestPipelineThrottlesSameScoreBursts(t *testing.T) {
	proc := &countingProc{}
	p := NewSignalPipeline(proc, nopMetrics{})
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, sig("AAA", 2)))
	require.NoError(t, p.Process(ctx, sig("AAA", 2)))
	require.NoError(t, p.Process(ctx, sig("AAA", 4)))
	require.NoError(t, p.Process(ctx, sig("BBB", 2)))

	require.Len(t, proc.got, 3)
	assert.Equal(t, 4, proc.got[1].Score)
	assert.Equal(t, "BBB", proc.got[2].TokenIdentity)
}

func TestPipelineResetForgetsHistory(t *testing.T) {
	proc := &countingProc{}
	p := NewSignalPipeline(proc, nopMetrics{})
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, sig("AAA", 2)))
	p.Reset()
	require.NoError(t, p.Process(ctx, sig("AAA", 2)))
	assert.Len(t, proc.got, 2)
}

func TestPipelineWithoutThrottle(t *testing.T) {
	proc := &countingProc{}
	p := NewSignalPipeline(proc, nopMetrics{}, WithMaxRPS(0))
	for range 3 {
		require.NoError(t, p.Process(context.Background(), sig("AAA", 2)))
	}
	assert.Len(t, proc.got, 3)
}

func TestPipelineRejectsInvalidSignals(t *testing.T) {
	proc := &countingProc{}
	p := NewSignalPipeline(proc, nopMetrics{}, WithMaxRPS(0))
	ctx := context.Background()

	bad := []models.Signal{
		sig("", 1),
		{TokenIdentity: "NEG", Metrics: models.Metrics{LiquidityUSD: -1}},
		{TokenIdentity: "TX", Metrics: models.Metrics{Sells5m: -3}},
		{TokenIdentity: "NAN", Metrics: models.Metrics{PriceChange5m: math.NaN()}},
	}
	for _, s := range bad {
		assert.Error(t, p.Process(ctx, s), s.TokenIdentity)
	}
	assert.Empty(t, proc.got)
}

func TestPipelineWrapsDownstreamError(t *testing.T) {
	boom := errors.New("bus closed")
	p := NewSignalPipeline(&countingProc{err: boom}, nopMetrics{})
	err := p.Process(context.Background(), sig("AAA", 1))
	assert.ErrorIs(t, err, boom)
}
