package jupiter

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
	Router      = "jupiter"
	NativeMint  = "So11111111111111111111111111111111111111112"
	solDecimals = 9
)

var (
	ErrNoWallet      = errors.New("jupiter: wallet public key not configured")
	ErrPercentSell   = errors.New("jupiter: percent sells need a holding lookup")
	ErrInvalidAmount = errors.New("jupiter: amount must be positive")
)

// Client builds unsigned Jupiter swap transactions. Signing and sending are
// left to the external signer that receives the artifact.
type Client struct {
	baseURL string
	wallet  string
	http    *pkghttp.Client
}

var _ drepo.LiveAdapter = (*Client)(nil)

func New(baseURL, wallet string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		wallet:  wallet,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

// Quote proxies GET /quote and returns the raw quote response.
func (c *Client) Quote(ctx context.Context, req models.QuoteRequest) (json.RawMessage, error) {
	q := map[string][]string{
		"inputMint":   {req.InputMint},
		"outputMint":  {req.OutputMint},
		"amount":      {req.Amount},
		"slippageBps": {strconv.Itoa(req.SlippageBps)},
	}
	if req.DirectOnly {
		q["onlyDirectRoutes"] = []string{"true"}
	}
	var out json.RawMessage
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{Method: pkghttp.MethodGet, URL: c.baseURL + "/quote", QueryParams: q}, &out)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	return out, nil
}

type swapRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports int64           `json:"prioritizationFeeLamports,omitempty"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight int64  `json:"lastValidBlockHeight"`
}

// Submit quotes the intent and returns the base64 swap transaction as the artifact.
// Buys spend Amount SOL; sells spend Amount in the token's base units.
func (c *Client) Submit(ctx context.Context, in models.TradeIntent) (models.SubmitResult, error) {
	if c.wallet == "" {
		return models.SubmitResult{}, ErrNoWallet
	}
	req, err := quoteFor(in)
	if err != nil {
		return models.SubmitResult{}, err
	}
	quote, err := c.Quote(ctx, req)
	if err != nil {
		return models.SubmitResult{}, err
	}

	var swap swapResponse
	err = c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    c.baseURL + "/swap",
		Body: swapRequest{
			QuoteResponse:             quote,
			UserPublicKey:             c.wallet,
			WrapAndUnwrapSol:          true,
			DynamicComputeUnitLimit:   true,
			PrioritizationFeeLamports: toLamports(in.PriorityFee).IntPart(),
		},
	}, &swap)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("jupiter swap: %w", err)
	}
	if swap.SwapTransaction == "" {
		return models.SubmitResult{}, fmt.Errorf("jupiter swap: empty transaction")
	}
	return models.SubmitResult{
		TxID:     fmt.Sprintf("jup-unsigned-%d", swap.LastValidBlockHeight),
		Artifact: swap.SwapTransaction,
		Price:    in.PriceHint,
		Router:   Router,
	}, nil
}

func quoteFor(in models.TradeIntent) (models.QuoteRequest, error) {
	req := models.QuoteRequest{SlippageBps: slippageBps(in.Slippage)}
	switch in.Side {
	case models.SideSell:
		if in.Amount <= 0 && in.AmountPct > 0 {
			return req, ErrPercentSell
		}
		req.InputMint, req.OutputMint = in.TokenIdentity, NativeMint
		req.Amount = decimal.NewFromFloat(in.Amount).Floor().String()
	default:
		req.InputMint, req.OutputMint = NativeMint, in.TokenIdentity
		req.Amount = toLamports(in.Amount).String()
	}
	if req.Amount == "0" || strings.HasPrefix(req.Amount, "-") {
		return req, ErrInvalidAmount
	}
	return req, nil
}

func toLamports(sol float64) decimal.Decimal {
	return decimal.NewFromFloat(sol).Shift(solDecimals).Floor()
}

// slippageBps converts a percent to basis points, defaulting to 1%.
func slippageBps(pct float64) int {
	if pct <= 0 {
		return 100
	}
	return int(decimal.NewFromFloat(pct).Shift(2).Round(0).IntPart())
}
