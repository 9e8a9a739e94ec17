// Package yahoofin is a minimal Go client for the Yahoo Finance chart and
// quote-summary endpoints, covering exactly what the index pipeline needs:
// daily close prices, stock-split events, and the current shares-outstanding
// figure for a symbol.
//
// Usage example:
//
//	c := yahoofin.NewClient(yahoofin.Config{})
//	bars, err := c.History(ctx, "AAPL", "1y")
//	shares, err := c.SharesOutstanding(ctx, "AAPL")
package yahoofin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0"
)

// Config configures the client.
type Config struct {
	BaseURL   string        // default: https://query1.finance.yahoo.com
	Timeout   time.Duration // default: 10s
	UserAgent string        // default: Mozilla/5.0
}

// Client talks to the Yahoo Finance JSON API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Bar is one daily point of a symbol's history. SplitRatio is the ratio of
// the split that took effect on Date (e.g. 4 for a 4:1 split), 0 when none.
type Bar struct {
	Date       string // YYYY-MM-DD, UTC
	Close      float64
	SplitRatio float64
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

// chartResponse mirrors the subset of /v8/finance/chart we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches the daily close series with split events for a symbol over
// a Yahoo range string ("1mo", "6mo", "1y", ...). Bars are returned
// ascending by date; days with a null close are dropped.
func (c *Client) History(ctx context.Context, symbol, rng string) ([]Bar, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", "1d")
	q.Set("events", "splits")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	var resp chartResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s: %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: empty result", symbol)
	}

	result := resp.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	// Splits are keyed by event timestamp; index them by calendar date.
	splitByDate := make(map[string]float64, len(result.Events.Splits))
	for _, sp := range result.Events.Splits {
		if sp.Denominator == 0 {
			continue
		}
		d := time.Unix(sp.Date, 0).UTC().Format("2006-01-02")
		splitByDate[d] = sp.Numerator / sp.Denominator
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		d := time.Unix(ts, 0).UTC().Format("2006-01-02")
		bars = append(bars, Bar{
			Date:       d,
			Close:      *closes[i],
			SplitRatio: splitByDate[d],
		})
	}
	return bars, nil
}

// quoteSummaryResponse mirrors the subset of /v10/finance/quoteSummary we consume.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				SharesOutstanding struct {
					Raw float64 `json:"raw"`
				} `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// SharesOutstanding fetches the current shares-outstanding figure for a
// symbol. Returns 0 without error when Yahoo has no figure; the caller
// decides whether that is fatal for the symbol.
func (c *Client) SharesOutstanding(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics",
		c.baseURL, url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("quote summary %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return 0, fmt.Errorf("quote summary %s: %s: %s", symbol,
			resp.QuoteSummary.Error.Code, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return 0, nil
	}
	return resp.QuoteSummary.Result[0].DefaultKeyStatistics.SharesOutstanding.Raw, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
