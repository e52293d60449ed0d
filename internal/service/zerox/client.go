package zerox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	pkghttp "GhostSniper/pkg/http"
)

const (
	Router      = "0x"
	NativeToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	ethDecimals = 18
)

var (
	ErrNoTaker       = errors.New("0x: taker address not configured")
	ErrPercentSell   = errors.New("0x: percent sells need a holding lookup")
	ErrInvalidAmount = errors.New("0x: amount must be positive")
)

// Client requests firm 0x swap quotes and returns the transaction to sign.
type Client struct {
	baseURL string
	chainID int
	taker   string
	http    *pkghttp.Client
}

var _ drepo.LiveAdapter = (*Client)(nil)

func New(baseURL, apiKey string, chainID int, taker string, timeout time.Duration) *Client {
	if chainID <= 0 {
		chainID = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		chainID: chainID,
		taker:   taker,
		http: pkghttp.NewClient(
			pkghttp.WithTimeout(timeout),
			pkghttp.WithHeader("0x-api-key", apiKey),
			pkghttp.WithHeader("0x-version", "v2"),
		),
	}
}

type quoteResponse struct {
	BuyAmount   string          `json:"buyAmount"`
	SellAmount  string          `json:"sellAmount"`
	Transaction json.RawMessage `json:"transaction"`
	Route       struct {
		Fills []struct {
			Source string `json:"source"`
		} `json:"fills"`
	} `json:"route"`
}

// Submit spends Amount ETH on buys and Amount base units of the token on sells.
func (c *Client) Submit(ctx context.Context, in models.TradeIntent) (models.SubmitResult, error) {
	if c.taker == "" {
		return models.SubmitResult{}, ErrNoTaker
	}
	sell, buy := NativeToken, in.TokenIdentity
	amount := decimal.NewFromFloat(in.Amount).Shift(ethDecimals).Floor()
	if in.Side == models.SideSell {
		if in.Amount <= 0 && in.AmountPct > 0 {
			return models.SubmitResult{}, ErrPercentSell
		}
		sell, buy = in.TokenIdentity, NativeToken
		amount = decimal.NewFromFloat(in.Amount).Floor()
	}
	if !amount.IsPositive() {
		return models.SubmitResult{}, ErrInvalidAmount
	}

	q := map[string][]string{
		"chainId":    {strconv.Itoa(c.chainID)},
		"sellToken":  {sell},
		"buyToken":   {buy},
		"sellAmount": {amount.String()},
		"taker":      {c.taker},
	}
	if in.Slippage > 0 {
		q["slippageBps"] = []string{decimal.NewFromFloat(in.Slippage).Shift(2).Round(0).String()}
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/swap/permit2/quote",
		QueryParams: q,
	}, &resp)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("0x quote: %w", err)
	}
	if len(resp.Transaction) == 0 || string(resp.Transaction) == "null" {
		return models.SubmitResult{}, fmt.Errorf("0x quote: no transaction in response")
	}

	router := Router
	if len(resp.Route.Fills) > 0 {
		router = Router + "/" + resp.Route.Fills[0].Source
	}
	return models.SubmitResult{
		TxID:     "0x-unsigned",
		Artifact: string(resp.Transaction),
		Price:    in.PriceHint,
		Router:   router,
	}, nil
}
