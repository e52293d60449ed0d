package pumpfun

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	pkghttp "GhostSniper/pkg/http"
)

const SourceID = "pumpfun"

// Client reads the pump.fun frontend listing of freshly launched coins.
type Client struct {
	baseURL string
	limit   int
	http    *pkghttp.Client
}

var _ drepo.MarketSource = (*Client)(nil)

func New(baseURL string, timeout time.Duration, limit int) *Client {
	if limit <= 0 {
		limit = 30
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

// Latest returns the newest coins as raw JSON objects.
func (c *Client) Latest(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/coins",
		QueryParams: map[string][]string{
			"offset":      {"0"},
			"limit":       {strconv.Itoa(c.limit)},
			"sort":        {"created_timestamp"},
			"order":       {"DESC"},
			"includeNsfw": {"false"},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("pumpfun latest: %w", err)
	}
	return out, nil
}

func (c *Client) Poll(ctx context.Context) ([]models.RawItem, error) {
	raws, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return lo.Map(raws, func(raw json.RawMessage, _ int) models.RawItem {
		return models.RawItem{SourceID: SourceID, Format: models.FormatPumpFunCoin, Payload: raw, ReceivedAt: now}
	}), nil
}

type Launch struct {
	Mint         string  `json:"mint"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	MarketCapUSD float64 `json:"usd_market_cap"`
	Complete     bool    `json:"complete"`
	CreatedAt    int64   `json:"created_timestamp"`
}

func (c *Client) Name() string { return SourceID }

// Fetch lists recent launches. pump.fun only exists on solana.
func (c *Client) Fetch(ctx context.Context, chain string) (any, error) {
	if chain != "" && chain != "solana" {
		return nil, fmt.Errorf("pumpfun: unsupported chain %q", chain)
	}
	raws, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(raws, func(raw json.RawMessage, _ int) (Launch, bool) {
		var l Launch
		return l, json.Unmarshal(raw, &l) == nil && l.Mint != ""
	}), nil
}
