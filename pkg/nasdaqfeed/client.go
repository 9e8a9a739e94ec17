// Package nasdaqfeed is a minimal Go client for the Nasdaq stock screener
// API, used to obtain the universe of US tickers ordered by market
// capitalization.
package nasdaqfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL   = "https://api.nasdaq.com/api/screener/stocks"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0"
)

// Config configures the client.
type Config struct {
	BaseURL   string        // default: https://api.nasdaq.com/api/screener/stocks
	Timeout   time.Duration // default: 10s
	UserAgent string        // default: Mozilla/5.0 (the API rejects requests without one)
}

// Client talks to the Nasdaq screener API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// screenerResponse mirrors the subset of the screener payload we consume.
type screenerResponse struct {
	Data struct {
		Table struct {
			Rows []struct {
				Symbol string `json:"symbol"`
			} `json:"rows"`
		} `json:"table"`
	} `json:"data"`
}

// Universe returns up to limit ticker symbols from the screener, in the
// API's default order (descending market cap). Symbols are returned exactly
// as the API spells them; normalization is the caller's concern.
func (c *Client) Universe(ctx context.Context, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("%s?limit=%d", c.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed screenerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	symbols := make([]string, 0, len(parsed.Data.Table.Rows))
	for _, row := range parsed.Data.Table.Rows {
		if row.Symbol == "" {
			continue
		}
		symbols = append(symbols, row.Symbol)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("screener returned no symbols")
	}
	return symbols, nil
}
