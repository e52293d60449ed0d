package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	pkghttp "GhostSniper/pkg/http"
)

// Client reads CoinGecko's trending search list. Trending is global, so the
// chain argument is ignored.
type Client struct {
	baseURL string
	apiKey  string
	http    *pkghttp.Client
}

var _ drepo.MarketSource = (*Client)(nil)

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout), pkghttp.WithHeader("x-cg-demo-api-key", apiKey)),
	}
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string  `json:"id"`
			Symbol        string  `json:"symbol"`
			Name          string  `json:"name"`
			Score         int     `json:"score"`
			MarketCapRank int     `json:"market_cap_rank"`
			PriceBTC      float64 `json:"price_btc"`
		} `json:"item"`
	} `json:"coins"`
}

func (c *Client) Name() string { return "coingecko" }

func (c *Client) Fetch(ctx context.Context, _ string) (any, error) {
	var resp trendingResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/search/trending",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}
	coins := make([]models.TrendingCoin, 0, len(resp.Coins))
	for _, entry := range resp.Coins {
		it := entry.Item
		coins = append(coins, models.TrendingCoin{
			ID: it.ID, Symbol: it.Symbol, Name: it.Name, Score: it.Score,
			MarketCapRank: it.MarketCapRank, PriceBTC: it.PriceBTC,
		})
	}
	return lo.Slice(coins, 0, 10), nil
}
