// Package strategy builds the bot strategies, one per bot kind.
package strategy

import (
	"context"
	"fmt"

	"GhostSniper/internal/domain/models"
	domsvc "GhostSniper/internal/domain/service"
)

// ChainPoller is a feed that lists fresh items for a chain.
type ChainPoller interface {
	Poll(ctx context.Context, chain string) ([]models.RawItem, error)
}

// Poller is a feed with a single fixed listing.
type Poller interface {
	Poll(ctx context.Context) ([]models.RawItem, error)
}

type dexScreener struct {
	feed  ChainPoller
	chain string
}

func (s *dexScreener) PollOnce(ctx context.Context) ([]models.RawItem, error) {
	return s.feed.Poll(ctx, s.chain)
}

func (s *dexScreener) BuildTradeIntent(sig models.Signal, opts models.BotOptions) models.TradeIntent {
	return buy(sig, opts)
}

type pumpFun struct {
	feed Poller
}

func (s *pumpFun) PollOnce(ctx context.Context) ([]models.RawItem, error) {
	return s.feed.Poll(ctx)
}

func (s *pumpFun) BuildTradeIntent(sig models.Signal, opts models.BotOptions) models.TradeIntent {
	intent := buy(sig, opts)
	intent.Chain = models.ChainSol
	return intent
}

// DexScreener polls the chain named in the bot options.
func DexScreener(feed ChainPoller) domsvc.StrategyFactory {
	return func(opts models.BotOptions) (domsvc.Strategy, error) {
		if _, ok := models.ParseChain(opts.Chain); !ok {
			return nil, fmt.Errorf("dexscreener: unsupported chain %q", opts.Chain)
		}
		return &dexScreener{feed: feed, chain: opts.Chain}, nil
	}
}

// PumpFun trades fresh pump.fun launches on solana.
func PumpFun(feed Poller) domsvc.StrategyFactory {
	return func(opts models.BotOptions) (domsvc.Strategy, error) {
		if c, ok := models.ParseChain(opts.Chain); ok && c != models.ChainSol {
			return nil, fmt.Errorf("pumpfun: chain must be solana, got %q", opts.Chain)
		}
		return &pumpFun{feed: feed}, nil
	}
}

// Factories maps bot kinds to their strategy factories.
func Factories(dex ChainPoller, pump Poller) map[models.BotKind]domsvc.StrategyFactory {
	return map[models.BotKind]domsvc.StrategyFactory{
		models.BotKindDexScreener: DexScreener(dex),
		models.BotKindPumpFun:     PumpFun(pump),
	}
}

func buy(sig models.Signal, opts models.BotOptions) models.TradeIntent {
	chain, ok := models.ParseChain(sig.Chain)
	if !ok {
		chain, _ = models.ParseChain(opts.Chain)
	}
	return models.TradeIntent{
		Side:          models.SideBuy,
		TokenIdentity: sig.TokenIdentity,
		Amount:        opts.Amount,
		Chain:         chain,
		Paper:         opts.Paper(),
		Slippage:      opts.Slippage,
		PriorityFee:   opts.PriorityFee,
		PriceHint:     sig.Metrics.PriceUSD,
	}
}
