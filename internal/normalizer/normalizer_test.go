package normalizer

import (
	"errors"
	"math"
	"testing"

	"index-systemv1/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize_NoShares(t *testing.T) {
	bars := []model.RawBar{{Date: "2025-01-02", Close: 100}}

	for _, shares := range []float64{0, -5} {
		_, err := Normalize("AAPL", bars, shares)
		if err == nil {
			t.Fatalf("shares=%v: expected error, got nil", shares)
		}
		if !errors.Is(err, ErrDataUnavailable) {
			t.Errorf("shares=%v: expected ErrDataUnavailable, got %v", shares, err)
		}
	}
}

func TestNormalize_NoSplits(t *testing.T) {
	bars := []model.RawBar{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 110},
	}

	obs, err := Normalize("AAPL", bars, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	for _, o := range obs {
		if !almostEqual(o.EffectiveShares, 1000) {
			t.Errorf("%s: effective shares = %v, want 1000", o.Date, o.EffectiveShares)
		}
		if !almostEqual(o.MarketCap, o.SharePrice*1000) {
			t.Errorf("%s: market cap = %v, want %v", o.Date, o.MarketCap, o.SharePrice*1000)
		}
	}
}

func TestNormalize_SplitAdjustment(t *testing.T) {
	// 2:1 split takes effect on the second day; the factor applies from the
	// split day forward.
	bars := []model.RawBar{
		{Date: "2025-01-02", Close: 100, SplitRatio: 0},
		{Date: "2025-01-03", Close: 50, SplitRatio: 2},
		{Date: "2025-01-06", Close: 55, SplitRatio: 0},
	}

	obs, err := Normalize("NVDA", bars, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(obs))
	}

	want := []struct {
		date      string
		effective float64
		cap       float64
	}{
		{"2025-01-02", 1000, 100000},
		{"2025-01-03", 500, 25000},
		{"2025-01-06", 500, 27500},
	}
	for i, w := range want {
		if obs[i].Date != w.date {
			t.Errorf("obs[%d].Date = %s, want %s", i, obs[i].Date, w.date)
		}
		if !almostEqual(obs[i].EffectiveShares, w.effective) {
			t.Errorf("%s: effective shares = %v, want %v", w.date, obs[i].EffectiveShares, w.effective)
		}
		if !almostEqual(obs[i].MarketCap, w.cap) {
			t.Errorf("%s: market cap = %v, want %v", w.date, obs[i].MarketCap, w.cap)
		}
	}
}

func TestNormalize_FactorMonotonic(t *testing.T) {
	bars := []model.RawBar{
		{Date: "2025-01-02", Close: 10, SplitRatio: 0},
		{Date: "2025-01-03", Close: 10, SplitRatio: 3},
		{Date: "2025-01-06", Close: 10, SplitRatio: 0},
		{Date: "2025-01-07", Close: 10, SplitRatio: 2},
		{Date: "2025-01-08", Close: 10, SplitRatio: 0},
	}

	obs, err := Normalize("TSLA", bars, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Effective shares must be non-increasing over ascending dates: the
	// cumulative factor only ever grows.
	for i := 1; i < len(obs); i++ {
		if obs[i].EffectiveShares > obs[i-1].EffectiveShares {
			t.Errorf("effective shares rose from %v to %v at %s",
				obs[i-1].EffectiveShares, obs[i].EffectiveShares, obs[i].Date)
		}
	}
	if !almostEqual(obs[len(obs)-1].EffectiveShares, 100) {
		t.Errorf("final effective shares = %v, want 100", obs[len(obs)-1].EffectiveShares)
	}
}

func TestNormalize_UnorderedInput(t *testing.T) {
	bars := []model.RawBar{
		{Date: "2025-01-06", Close: 55, SplitRatio: 0},
		{Date: "2025-01-02", Close: 100, SplitRatio: 0},
		{Date: "2025-01-03", Close: 50, SplitRatio: 2},
	}

	obs, err := Normalize("NVDA", bars, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(obs); i++ {
		if obs[i].Date <= obs[i-1].Date {
			t.Fatalf("output not ascending: %s after %s", obs[i].Date, obs[i-1].Date)
		}
	}
	// Same factor path as the ordered case.
	if !almostEqual(obs[2].EffectiveShares, 500) {
		t.Errorf("obs[2] effective shares = %v, want 500", obs[2].EffectiveShares)
	}
}

func TestNormalize_EmptyBars(t *testing.T) {
	obs, err := Normalize("AAPL", nil, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("expected no observations, got %d", len(obs))
	}
}
