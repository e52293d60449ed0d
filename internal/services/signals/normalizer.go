package signals

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"GhostSniper/internal/domain/models"
	domsvc "GhostSniper/internal/domain/service"
)

var (
	ErrUnknownFormat   = errors.New("unknown raw item format")
	ErrMissingIdentity = errors.New("payload has no token identity")
)

type decodeFunc func(payload json.RawMessage, now time.Time) (models.Signal, error)

// Normalizer maps feed-specific payloads onto Signal. The returned signal is
// unscored; absent numeric fields stay zero.
type Normalizer struct {
	decoders map[string]decodeFunc
	now      func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		decoders: map[string]decodeFunc{
			models.FormatDexPair:         decodeDexPair,
			models.FormatPumpFunCoin:     decodePumpFunCoin,
			models.FormatPumpPortalNew:   decodePumpPortal,
			models.FormatPumpPortalTrade: decodePumpPortal,
			models.FormatGeneric:         decodeGeneric,
		},
		now: time.Now,
	}
}

func (n *Normalizer) Normalize(item models.RawItem) (models.Signal, error) {
	dec, ok := n.decoders[item.Format]
	if !ok {
		return models.Signal{}, fmt.Errorf("%w: %q", ErrUnknownFormat, item.Format)
	}
	now := item.ReceivedAt
	if now.IsZero() {
		now = n.now()
	}
	sig, err := dec(item.Payload, now)
	if err != nil {
		return models.Signal{}, fmt.Errorf("normalize %s: %w", item.Format, err)
	}
	if sig.TokenIdentity == "" {
		return models.Signal{}, fmt.Errorf("normalize %s: %w", item.Format, ErrMissingIdentity)
	}
	sig.SourceID = item.SourceID
	sig.ObservedAt = now
	if sig.Metrics.AgeSeconds < 0 {
		sig.Metrics.AgeSeconds = 0
	}
	return sig, nil
}

// flexFloat accepts both JSON numbers and numeric strings (DexScreener sends priceUsd as a string).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

type dexToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

type dexPair struct {
	ChainID     string    `json:"chainId"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   dexToken  `json:"baseToken"`
	PriceUSD    flexFloat `json:"priceUsd"`
	Txns        struct {
		M5 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"m5"`
	} `json:"txns"`
	Volume struct {
		M5 flexFloat `json:"m5"`
	} `json:"volume"`
	PriceChange struct {
		M5 flexFloat `json:"m5"`
	} `json:"priceChange"`
	Liquidity struct {
		USD flexFloat `json:"usd"`
	} `json:"liquidity"`
	FDV           flexFloat `json:"fdv"`
	MarketCap     flexFloat `json:"marketCap"`
	PairCreatedAt int64     `json:"pairCreatedAt"` // unix ms
}

func decodeDexPair(payload json.RawMessage, now time.Time) (models.Signal, error) {
	var p dexPair
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.Signal{}, err
	}
	mcap := float64(p.MarketCap)
	if mcap == 0 {
		mcap = float64(p.FDV)
	}
	return models.Signal{
		TokenIdentity: p.BaseToken.Address,
		Symbol:        p.BaseToken.Symbol,
		Chain:         p.ChainID,
		Pool:          p.PairAddress,
		Metrics: models.Metrics{
			LiquidityUSD:  float64(p.Liquidity.USD),
			Volume5m:      float64(p.Volume.M5),
			PriceChange5m: float64(p.PriceChange.M5),
			Buys5m:        p.Txns.M5.Buys,
			Sells5m:       p.Txns.M5.Sells,
			AgeSeconds:    ageFromMillis(p.PairCreatedAt, now),
			MarketCapUSD:  mcap,
			PriceUSD:      float64(p.PriceUSD),
		},
	}, nil
}

type pumpFunCoin struct {
	Mint             string    `json:"mint"`
	Symbol           string    `json:"symbol"`
	USDMarketCap     flexFloat `json:"usd_market_cap"`
	CreatedTimestamp int64     `json:"created_timestamp"` // unix ms
	RaydiumPool      string    `json:"raydium_pool"`
}

func decodePumpFunCoin(payload json.RawMessage, now time.Time) (models.Signal, error) {
	var c pumpFunCoin
	if err := json.Unmarshal(payload, &c); err != nil {
		return models.Signal{}, err
	}
	pool := "pump"
	if c.RaydiumPool != "" {
		pool = "raydium"
	}
	return models.Signal{
		TokenIdentity: c.Mint,
		Symbol:        c.Symbol,
		Chain:         "solana",
		Pool:          pool,
		Metrics: models.Metrics{
			MarketCapUSD: float64(c.USDMarketCap),
			AgeSeconds:   ageFromMillis(c.CreatedTimestamp, now),
		},
	}, nil
}

type pumpPortalEvent struct {
	Mint   string `json:"mint"`
	Symbol string `json:"symbol"`
	TxType string `json:"txType"` // create | buy | sell
	Pool   string `json:"pool"`
}

func decodePumpPortal(payload json.RawMessage, _ time.Time) (models.Signal, error) {
	var e pumpPortalEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return models.Signal{}, err
	}
	m := models.Metrics{}
	switch e.TxType {
	case "buy":
		m.Buys5m = 1
	case "sell":
		m.Sells5m = 1
	}
	return models.Signal{
		TokenIdentity: e.Mint,
		Symbol:        e.Symbol,
		Chain:         "solana",
		Pool:          e.Pool,
		Metrics:       m,
	}, nil
}

type genericItem struct {
	Token         string    `json:"token"`
	Symbol        string    `json:"symbol"`
	Chain         string    `json:"chain"`
	Pool          string    `json:"pool"`
	LiquidityUSD  flexFloat `json:"liquidityUsd"`
	Volume5m      flexFloat `json:"volume5m"`
	PriceChange5m flexFloat `json:"priceChange5m"`
	Buys5m        int       `json:"buys5m"`
	Sells5m       int       `json:"sells5m"`
	AgeSeconds    int64     `json:"ageSeconds"`
	AgeMinutes    int64     `json:"ageMinutes"`
	MarketCapUSD  flexFloat `json:"marketCapUsd"`
	PriceUSD      flexFloat `json:"priceUsd"`
}

func decodeGeneric(payload json.RawMessage, _ time.Time) (models.Signal, error) {
	var g genericItem
	if err := json.Unmarshal(payload, &g); err != nil {
		return models.Signal{}, err
	}
	age := g.AgeSeconds
	if age == 0 && g.AgeMinutes > 0 {
		age = g.AgeMinutes * 60
	}
	return models.Signal{
		TokenIdentity: g.Token,
		Symbol:        g.Symbol,
		Chain:         g.Chain,
		Pool:          g.Pool,
		Metrics: models.Metrics{
			LiquidityUSD:  float64(g.LiquidityUSD),
			Volume5m:      float64(g.Volume5m),
			PriceChange5m: float64(g.PriceChange5m),
			Buys5m:        g.Buys5m,
			Sells5m:       g.Sells5m,
			AgeSeconds:    age,
			MarketCapUSD:  float64(g.MarketCapUSD),
			PriceUSD:      float64(g.PriceUSD),
		},
	}, nil
}

func ageFromMillis(createdMs int64, now time.Time) int64 {
	if createdMs <= 0 {
		return 0
	}
	return int64(now.Sub(time.UnixMilli(createdMs)) / time.Second)
}

var _ domsvc.Normalizer = (*Normalizer)(nil)
