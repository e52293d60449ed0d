package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	domsvc "GhostSniper/internal/domain/service"
	pkghttp "GhostSniper/pkg/http"
)

const SourceID = "dexscreener"

// Client talks to the public DexScreener API. It paces itself under the
// published per-minute limits with a token bucket.
type Client struct {
	baseURL string
	limit   int
	http    *pkghttp.Client
	pace    *rate.Limiter
}

var _ drepo.MarketSource = (*Client)(nil)

func New(baseURL string, timeout time.Duration, rps float64, limit int) *Client {
	if rps <= 0 {
		rps = 4
	}
	if limit <= 0 {
		limit = 20
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		pace:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	FDV float64 `json:"fdv"`
}

func (p pair) summary() models.PairSummary {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)
	return models.PairSummary{
		ChainID:      p.ChainID,
		DexID:        p.DexID,
		PairAddress:  p.PairAddress,
		BaseAddress:  p.BaseToken.Address,
		BaseSymbol:   p.BaseToken.Symbol,
		QuoteSymbol:  p.QuoteToken.Symbol,
		PriceUSD:     price,
		LiquidityUSD: p.Liquidity.USD,
		Volume24h:    p.Volume.H24,
		FDV:          p.FDV,
		URL:          p.URL,
	}
}

// Search returns the raw pair objects matching q.
func (c *Client) Search(ctx context.Context, q string) ([]json.RawMessage, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}
	var resp struct {
		Pairs []json.RawMessage `json:"pairs"`
	}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/latest/dex/search",
		QueryParams: url.Values{"q": {q}},
	}, &resp)
	if err != nil {
		return nil, classify(fmt.Errorf("dexscreener search: %w", err))
	}
	return resp.Pairs, nil
}

// Pairs returns the raw pairs for up to 30 token addresses on one chain.
func (c *Client) Pairs(ctx context.Context, chain string, tokens []string) ([]json.RawMessage, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}
	var out []json.RawMessage
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, url.PathEscape(chain), strings.Join(lo.Slice(tokens, 0, 30), ",")),
	}, &out)
	if err != nil {
		return nil, classify(fmt.Errorf("dexscreener pairs: %w", err))
	}
	return out, nil
}

// LatestProfiles lists tokens that recently published a profile.
func (c *Client) LatestProfiles(ctx context.Context) ([]TokenProfile, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}
	var out []TokenProfile
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/token-profiles/latest/v1",
	}, &out)
	if err != nil {
		return nil, classify(fmt.Errorf("dexscreener profiles: %w", err))
	}
	return out, nil
}

type TokenProfile struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	URL          string `json:"url"`
}

// Poll returns the freshest pairs on chain as raw feed items: pairs of newly
// profiled tokens first, then the search listing.
func (c *Client) Poll(ctx context.Context, chain string) ([]models.RawItem, error) {
	var raws []json.RawMessage
	if profiles, err := c.LatestProfiles(ctx); err == nil {
		tokens := lo.FilterMap(profiles, func(p TokenProfile, _ int) (string, bool) {
			return p.TokenAddress, p.ChainID == chain && p.TokenAddress != ""
		})
		if pairs, err := c.Pairs(ctx, chain, lo.Uniq(tokens)); err == nil {
			raws = append(raws, pairs...)
		}
	}
	found, err := c.Search(ctx, chain)
	if err != nil && len(raws) == 0 {
		return nil, err
	}
	raws = onChain(append(raws, found...), chain)

	now := time.Now().UTC()
	items := lo.Map(raws, func(raw json.RawMessage, _ int) models.RawItem {
		return models.RawItem{SourceID: SourceID, Format: models.FormatDexPair, Payload: raw, ReceivedAt: now}
	})
	return lo.Slice(items, 0, c.limit), nil
}

// onChain drops pairs whose chainId is not chain. Search matches on text, so
// a query for one chain also returns pairs listed on others.
func onChain(raws []json.RawMessage, chain string) []json.RawMessage {
	if chain == "" {
		return raws
	}
	return lo.Filter(raws, func(raw json.RawMessage, _ int) bool {
		var p struct {
			ChainID string `json:"chainId"`
		}
		return json.Unmarshal(raw, &p) == nil && p.ChainID == chain
	})
}

func (c *Client) Name() string { return SourceID }

// Fetch returns the top pairs on chain by liquidity.
func (c *Client) Fetch(ctx context.Context, chain string) (any, error) {
	raws, err := c.Search(ctx, chain)
	if err != nil {
		return nil, err
	}
	pairs := make([]models.PairSummary, 0, len(raws))
	for _, raw := range raws {
		var p pair
		if json.Unmarshal(raw, &p) != nil || p.PairAddress == "" {
			continue
		}
		if chain != "" && p.ChainID != chain {
			continue
		}
		pairs = append(pairs, p.summary())
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("dexscreener: no pairs for %q", chain)
	}
	return lo.Slice(pairs, 0, c.limit), nil
}

// classify marks client errors that polling again will not fix.
func classify(err error) error {
	if pkghttp.IsStatus(err, http.StatusNotFound) || pkghttp.IsStatus(err, http.StatusForbidden) {
		return fmt.Errorf("%w: %w", domsvc.ErrUnrecoverable, err)
	}
	return err
}
