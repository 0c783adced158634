package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/wealthlens/quant_service/pkg/errors"
)

// memoryCache is an in-process QuoteCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value.(string)
	return nil
}

func quoteServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "231.4400", "10. change percent": "1.2300%"}}`))
	}))
}

func TestGetQuote_ParsesGlobalQuote(t *testing.T) {
	hits := 0
	server := quoteServer(t, &hits)
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil, zaptest.NewLogger(t))

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("231.44")))
	assert.Equal(t, "1.2300%", quote.ChangePercent)
	assert.False(t, quote.Cached)
	assert.Equal(t, 1, hits)
}

func TestGetQuote_ServesSecondRequestFromCache(t *testing.T) {
	hits := 0
	server := quoteServer(t, &hits)
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, newMemoryCache(), zaptest.NewLogger(t))

	first, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, second.Price.Equal(first.Price))
	assert.Equal(t, 1, hits)
}

func TestGetQuote_UnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil, zaptest.NewLogger(t))

	_, err := client.GetQuote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperrors.StatusCode(err))
}

func TestGetQuote_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, err := client.GetQuote(context.Background(), "AAPL")
		require.Error(t, err)
	}

	// Breaker is now open; the failure is immediate and still maps upstream.
	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperrors.StatusCode(err))
}

func TestGetQuote_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, nil, zaptest.NewLogger(t))

	assert.False(t, client.Configured())
	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestGetQuote_MissingSymbol(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"}, nil, zaptest.NewLogger(t))

	_, err := client.GetQuote(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}
