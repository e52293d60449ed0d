package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

func TestSubmitBuildsUnsignedSwap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, NativeMint, q.Get("inputMint"))
		assert.Equal(t, "MINT", q.Get("outputMint"))
		assert.Equal(t, "50000000", q.Get("amount"))
		assert.Equal(t, "150", q.Get("slippageBps"))
		_, _ = w.Write([]byte(`{"inAmount":"50000000","outAmount":"123"}`))
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		var body swapRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "WALLET", body.UserPublicKey)
		assert.JSONEq(t, `{"inAmount":"50000000","outAmount":"123"}`, string(body.QuoteResponse))
		assert.Equal(t, int64(1000), body.PrioritizationFeeLamports)
		_, _ = w.Write([]byte(`{"swapTransaction":"BASE64TX","lastValidBlockHeight":42}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "WALLET", time.Second)
	res, err := c.Submit(context.Background(), models.TradeIntent{
		Side: models.SideBuy, TokenIdentity: "MINT", Amount: 0.05, Slippage: 1.5, PriorityFee: 0.000001, Chain: models.ChainSol,
	})
	require.NoError(t, err)
	assert.Equal(t, "BASE64TX", res.Artifact)
	assert.Equal(t, "jup-unsigned-42", res.TxID)
	assert.Equal(t, Router, res.Router)
}

func TestSubmitRejects(t *testing.T) {
	c := New("http://unused", "", time.Second)
	_, err := c.Submit(context.Background(), models.TradeIntent{Side: models.SideBuy, TokenIdentity: "M", Amount: 1})
	assert.ErrorIs(t, err, ErrNoWallet)

	c = New("http://unused", "WALLET", time.Second)
	_, err = c.Submit(context.Background(), models.TradeIntent{Side: models.SideSell, TokenIdentity: "M", AmountPct: 50})
	assert.ErrorIs(t, err, ErrPercentSell)

	_, err = c.Submit(context.Background(), models.TradeIntent{Side: models.SideBuy, TokenIdentity: "M"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSlippageBps(t *testing.T) {
	assert.Equal(t, 100, slippageBps(0))
	assert.Equal(t, 50, slippageBps(0.5))
	assert.Equal(t, 1000, slippageBps(10))
}
