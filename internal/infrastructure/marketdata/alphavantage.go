package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "github.com/wealthlens/quant_service/pkg/errors"
	"github.com/wealthlens/quant_service/pkg/metrics"
	"github.com/wealthlens/quant_service/pkg/retry"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Quote is a single market quote from the price feed.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent string          `json:"change_percent,omitempty"`
	FetchedAt     time.Time       `json:"fetched_at"`
	Cached        bool            `json:"cached,omitempty"`
}

// QuoteCache caches serialized quotes between requests.
type QuoteCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client fetches live quotes from Alpha Vantage. The feed is an optional
// collaborator: it sits behind its own timeout and a circuit breaker, and is
// never consulted by the simulation or risk engines.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   QuoteCache
	logger  *zap.Logger
}

// NewClient creates a market data client. cache may be nil.
func NewClient(cfg Config, cache QuoteCache, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alpha-vantage",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerStateGauge.WithLabelValues(name).Set(float64(to))
			logger.Warn("market data circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		cache:   cache,
		logger:  logger,
	}
}

// Configured reports whether an API credential is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// GetQuote returns a single quote for the symbol, served from cache when a
// fresh entry exists.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, apperrors.MissingField("symbol")
	}
	if !c.Configured() {
		return nil, apperrors.UpstreamUnavailable("market data", fmt.Errorf("API key not configured"))
	}

	if q := c.fromCache(ctx, symbol); q != nil {
		metrics.QuoteFetchesTotal.WithLabelValues("cache", "ok").Inc()
		return q, nil
	}

	// Transient upstream failures retry inside a single breaker execution so
	// the breaker counts the whole attempt, not each retry.
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var quote *Quote
		err := retry.Do(ctx, retry.DefaultConfig(), func() error {
			var fetchErr error
			quote, fetchErr = c.fetch(ctx, symbol)
			return fetchErr
		}, isTransient)
		return quote, err
	})
	if err != nil {
		metrics.QuoteFetchesTotal.WithLabelValues("upstream", "error").Inc()
		return nil, apperrors.UpstreamUnavailable("market data", err)
	}

	quote := result.(*Quote)
	metrics.QuoteFetchesTotal.WithLabelValues("upstream", "ok").Inc()
	c.toCache(ctx, symbol, quote)

	return quote, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.cfg.BaseURL, url.QueryEscape(symbol), c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &transientError{fmt.Errorf("quote request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("quote request returned status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &transientError{err}
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}

	var payload struct {
		GlobalQuote struct {
			Symbol        string `json:"01. symbol"`
			Price         string `json:"05. price"`
			ChangePercent string `json:"10. change percent"`
		} `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if payload.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("no quote returned for symbol %q", symbol)
	}

	price, err := decimal.NewFromString(payload.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("unparseable quote price %q: %w", payload.GlobalQuote.Price, err)
	}

	return &Quote{
		Symbol:        payload.GlobalQuote.Symbol,
		Price:         price,
		ChangePercent: payload.GlobalQuote.ChangePercent,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// transientError marks a failure worth retrying within a breaker execution.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func (c *Client) fromCache(ctx context.Context, symbol string) *Quote {
	if c.cache == nil {
		return nil
	}

	raw, err := c.cache.Get(ctx, "quote:"+symbol)
	if err != nil || raw == "" {
		return nil
	}

	var quote Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		return nil
	}
	quote.Cached = true
	return &quote
}

func (c *Client) toCache(ctx context.Context, symbol string, quote *Quote) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, "quote:"+symbol, string(raw), c.cfg.CacheTTL); err != nil {
		c.logger.Warn("failed to cache quote", zap.String("symbol", symbol), zap.Error(err))
	}
}
