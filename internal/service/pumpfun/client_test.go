package pumpfun

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

func TestPollAndFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "created_timestamp", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(`[{"mint":"M1","symbol":"AAA","usd_market_cap":12000.5,"created_timestamp":1700000000000},{"symbol":"broken"}]`))
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second, 5)

	items, err := c.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.FormatPumpFunCoin, items[0].Format)

	got, err := c.Fetch(context.Background(), "solana")
	require.NoError(t, err)
	launches := got.([]Launch)
	require.Len(t, launches, 1)
	assert.Equal(t, "AAA", launches[0].Symbol)

	_, err = c.Fetch(context.Background(), "ethereum")
	assert.Error(t, err)
}
