package ingest

import (
	"context"

	"index-systemv1/internal/model"
	"index-systemv1/pkg/nasdaqfeed"
	"index-systemv1/pkg/yahoofin"
)

// NasdaqUniverse adapts the Nasdaq screener client to UniverseProvider,
// normalizing symbols into storage form.
type NasdaqUniverse struct {
	Client *nasdaqfeed.Client
}

func (p *NasdaqUniverse) Universe(ctx context.Context, limit int) ([]string, error) {
	symbols, err := p.Client.Universe(ctx, limit)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(symbols))
	for _, s := range symbols {
		tickers = append(tickers, model.NormalizeTicker(s))
	}
	return tickers, nil
}

// YahooHistory adapts the Yahoo Finance client to HistoryProvider. The two
// underlying calls (chart history, shares outstanding) count as one fetch:
// either both succeed or the ticker fails as a unit.
type YahooHistory struct {
	Client *yahoofin.Client
}

func (p *YahooHistory) History(ctx context.Context, ticker, period string) ([]model.RawBar, float64, error) {
	yahooBars, err := p.Client.History(ctx, ticker, period)
	if err != nil {
		return nil, 0, err
	}
	shares, err := p.Client.SharesOutstanding(ctx, ticker)
	if err != nil {
		return nil, 0, err
	}

	bars := make([]model.RawBar, 0, len(yahooBars))
	for _, b := range yahooBars {
		bars = append(bars, model.RawBar{
			Date:       b.Date,
			Close:      b.Close,
			SplitRatio: b.SplitRatio,
		})
	}
	return bars, shares, nil
}
