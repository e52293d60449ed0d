package strategy

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

type chainFeed struct{ chains []string }

func (f *chainFeed) Poll(_ context.Context, chain string) ([]models.RawItem, error) {
	f.chains = append(f.chains, chain)
	return []models.RawItem{{SourceID: "dex"}}, nil
}

type fixedFeed struct{ calls int }

func (f *fixedFeed) Poll(context.Context) ([]models.RawItem, error) {
	f.calls++
	return nil, nil
}

func TestDexScreenerStrategy(t *testing.T) {
	feed := &chainFeed{}
	s, err := Factories(feed, &fixedFeed{})[models.BotKindDexScreener](models.BotOptions{Chain: "base", Amount: 0.1})
	require.NoError(t, err)

	items, err := s.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"base"}, feed.chains)

	sig := models.Signal{TokenIdentity: "0xT", Chain: "base", Metrics: models.Metrics{PriceUSD: 2}}
	intent := s.BuildTradeIntent(sig, models.BotOptions{Amount: 0.1, Slippage: 2, PaperMode: lo.ToPtr(false)})
	assert.Equal(t, models.TradeIntent{
		Side: models.SideBuy, TokenIdentity: "0xT", Amount: 0.1, Chain: models.ChainEVM,
		Slippage: 2, PriceHint: 2,
	}, intent)

	_, err = DexScreener(feed)(models.BotOptions{Chain: "dogechain"})
	assert.Error(t, err)
}

func TestPumpFunStrategy(t *testing.T) {
	feed := &fixedFeed{}
	s, err := PumpFun(feed)(models.BotOptions{Chain: "solana"})
	require.NoError(t, err)
	_, err = s.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, feed.calls)

	intent := s.BuildTradeIntent(models.Signal{TokenIdentity: "MINT"}, models.BotOptions{Amount: 0.05})
	assert.Equal(t, models.ChainSol, intent.Chain)
	assert.True(t, intent.Paper)

	_, err = PumpFun(feed)(models.BotOptions{Chain: "ethereum"})
	assert.Error(t, err)
}
