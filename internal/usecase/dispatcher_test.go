package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

type stubMarket struct{ calls int }

func (s *stubMarket) Snapshot(_ context.Context, chain string) (models.MarketSnapshot, error) {
	s.calls++
	return models.MarketSnapshot{Chain: chain, Data: map[string]any{"coingecko": []string{"x"}}}, nil
}

type dispatcherFixture struct {
	d      *Dispatcher
	interp *mockInterpreter
	bus    *recordingBus
	state  *AgentState
	market *stubMarket
}

func newDispatcherFixture(ceiling bool, params models.AgentParams) *dispatcherFixture {
	bus := &recordingBus{}
	state := NewAgentState(ceiling, params, 100, "mock")
	interp := new(mockInterpreter)
	market := &stubMarket{}
	d := NewDispatcher(interp, state, NewReporter(state, bus, nil), NewTradeGateway(nil, nil, nil), market, nil)
	return &dispatcherFixture{d: d, interp: interp, bus: bus, state: state, market: market}
}

func (f *dispatcherFixture) willCall(calls ...models.Call) {
	f.interp.On("Interpret", mock.Anything, mock.MatchedBy(func(p models.Prompt) bool {
		return p.System == SystemInstruction && len(p.Catalog) == 5
	})).Return(models.Interpretation{Calls: calls}, nil).Once()
}

func TestBatchWithInvalidMiddleActionRunsTheOthers(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{RiskTier: "medium"})
	f.willCall(
		models.Call{Name: models.ActionWatchAddress, Args: map[string]any{"address": "WALLET1"}},
		models.Call{Name: models.ActionQueueTrade, Args: map[string]any{"chain": "sol"}},
		models.Call{Name: models.ActionUpdateParams, Args: map[string]any{"budget": 300.0}},
	)

	res, err := f.d.Dispatch(context.Background(), "watch, buy and raise budget", "web")
	require.NoError(t, err)
	require.Len(t, res.Actions, 3)

	assert.True(t, res.Actions[0].OK)
	assert.False(t, res.Actions[1].OK)
	assert.Contains(t, res.Actions[1].Error, "token")
	assert.Contains(t, res.Actions[1].Error, "amount")
	assert.True(t, res.Actions[2].OK)

	assert.Len(t, f.bus.OfType(models.EventWatch), 1)
	assert.Len(t, f.bus.OfType(models.EventParams), 1)
	assert.Empty(t, f.bus.OfType(models.EventTrade))
	assert.Len(t, f.bus.Logs(models.LevelError), 1)
	assert.Len(t, f.bus.Logs(models.LevelOK), 2)
	assert.Len(t, f.bus.Logs(models.LevelUser), 1)

	assert.Equal(t, 300.0, f.state.Params().BudgetUSD)
	assert.Equal(t, []string{"WALLET1"}, f.state.Params().WatchedAddresses)
	f.interp.AssertExpectations(t)
}

func TestQueueTradeLiveWithoutCeilingDowngradesToPaper(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.willCall(models.Call{Name: models.ActionQueueTrade, Args: map[string]any{
		"chain": "sol", "token": "MINT", "amount": 0.05, "live": true,
	}})

	res, err := f.d.Dispatch(context.Background(), "ape live", "web")
	require.NoError(t, err)
	require.True(t, res.Actions[0].OK)

	trades := f.bus.OfType(models.EventTrade)
	require.Len(t, trades, 1)
	p := trades[0].Payload.(models.TradePayload)
	assert.True(t, p.Intent.Paper)
	assert.True(t, p.Result.Paper)
	assert.Equal(t, 1.0, p.Intent.Slippage)
	assert.Len(t, f.bus.Logs(models.LevelWarn), 1)
}

func TestQueueTradeConfirmBeforeLiveDowngrades(t *testing.T) {
	f := newDispatcherFixture(true, models.AgentParams{LiveEnabled: true, ConfirmBeforeLive: true})
	f.willCall(models.Call{Name: models.ActionQueueTrade, Args: map[string]any{"chain": "evm", "token": "0xabc", "amount": 0.1}})

	_, err := f.d.Dispatch(context.Background(), "buy", "web")
	require.NoError(t, err)

	p := f.bus.OfType(models.EventTrade)[0].Payload.(models.TradePayload)
	assert.True(t, p.Intent.Paper)
	assert.Len(t, f.bus.Logs(models.LevelWarn), 1)
}

func TestLiveTradeFailureIsReported(t *testing.T) {
	f := newDispatcherFixture(true, models.AgentParams{LiveEnabled: true})
	f.willCall(models.Call{Name: models.ActionQueueTrade, Args: map[string]any{"chain": "sol", "token": "MINT", "amount": 1}})

	res, err := f.d.Dispatch(context.Background(), "buy live", "web")
	require.NoError(t, err)
	assert.False(t, res.Actions[0].OK)
	assert.Contains(t, res.Actions[0].Error, ErrNoLiveAdapter.Error())

	p := f.bus.OfType(models.EventTrade)[0].Payload.(models.TradePayload)
	assert.False(t, p.Intent.Paper)
	assert.False(t, p.Result.OK)
	assert.Len(t, f.bus.Logs(models.LevelError), 1)
}

func TestUpdateParamsRespectsCeiling(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.willCall(models.Call{Name: models.ActionUpdateParams, Args: map[string]any{"live": true, "riskTier": "high"}})

	_, err := f.d.Dispatch(context.Background(), "go live", "web")
	require.NoError(t, err)

	p := f.bus.OfType(models.EventParams)[0].Payload.(models.AgentParams)
	assert.False(t, p.LiveEnabled)
	assert.Equal(t, "high", p.RiskTier)
}

func TestUpdateParamsRejectsBadRiskTier(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{RiskTier: "low"})
	f.willCall(models.Call{Name: models.ActionUpdateParams, Args: map[string]any{"riskTier": "yolo"}})

	res, err := f.d.Dispatch(context.Background(), "yolo", "web")
	require.NoError(t, err)
	assert.False(t, res.Actions[0].OK)
	assert.Equal(t, "low", f.state.Params().RiskTier)
	assert.Empty(t, f.bus.OfType(models.EventParams))
}

func TestClosePositionSellsPercent(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.willCall(models.Call{Name: models.ActionClosePosition, Args: map[string]any{"chain": "solana", "token": "MINT"}})

	_, err := f.d.Dispatch(context.Background(), "dump it", "web")
	require.NoError(t, err)

	p := f.bus.OfType(models.EventTrade)[0].Payload.(models.TradePayload)
	assert.Equal(t, models.SideSell, p.Intent.Side)
	assert.Equal(t, 100.0, p.Intent.AmountPct)
	assert.Equal(t, models.ChainSol, p.Intent.Chain)
	assert.True(t, p.Result.OK)
}

func TestQueryMarketBroadcastsSnapshot(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.willCall(models.Call{Name: models.ActionQueryMarket, Args: map[string]any{}})

	res, err := f.d.Dispatch(context.Background(), "what's hot", "web")
	require.NoError(t, err)
	assert.True(t, res.Actions[0].OK)
	assert.Equal(t, 1, f.market.calls)

	p := f.bus.OfType(models.EventMarkets)[0].Payload.(models.MarketsPayload)
	assert.Equal(t, "all", p.Chain)
}

func TestUnknownActionOnlyWarns(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.willCall(
		models.Call{Name: "launchRocket"},
		models.Call{Name: models.ActionWatchAddress, Args: map[string]any{"address": "W"}},
	)

	res, err := f.d.Dispatch(context.Background(), "??", "web")
	require.NoError(t, err)
	assert.False(t, res.Actions[0].OK)
	assert.True(t, res.Actions[1].OK)
	assert.Len(t, f.bus.Logs(models.LevelWarn), 1)
}

func TestTextReplyAndInterpreterFailure(t *testing.T) {
	f := newDispatcherFixture(false, models.AgentParams{})
	f.interp.On("Interpret", mock.Anything, mock.Anything).Return(models.Interpretation{Text: "gm"}, nil).Once()
	f.interp.On("Interpret", mock.Anything, mock.Anything).Return(models.Interpretation{}, errors.New("quota")).Once()

	res, err := f.d.Dispatch(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "gm", res.Text)
	assert.Len(t, f.bus.Logs(models.LevelAssistant), 1)

	_, err = f.d.Dispatch(context.Background(), "hi again", "web")
	assert.Error(t, err)
	assert.Empty(t, f.bus.OfType(models.EventTrade))
	assert.Len(t, f.bus.Logs(models.LevelError), 1)
}
