package model

import (
	"reflect"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	cases := []struct{ in, want string }{
		{"aapl", "AAPL"},
		{" MSFT ", "MSFT"},
		{"BRK/B", "BRK-B"},
		{"brk/a", "BRK-A"},
	}
	for _, c := range cases {
		if got := NormalizeTicker(c.in); got != c.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestComposition_RoundTrip(t *testing.T) {
	rec := IndexRecord{Composition: []string{"MSFT", "AAPL", "NVDA"}}

	joined := rec.JoinComposition()
	if joined != "MSFT,AAPL,NVDA" {
		t.Errorf("joined = %q", joined)
	}
	if got := SplitComposition(joined); !reflect.DeepEqual(got, rec.Composition) {
		t.Errorf("split = %v, want %v", got, rec.Composition)
	}
}

func TestSplitComposition_Empty(t *testing.T) {
	got := SplitComposition("")
	if got == nil || len(got) != 0 {
		t.Errorf("empty string must yield empty non-nil list, got %v", got)
	}
}

func TestCompositionSet(t *testing.T) {
	rec := IndexRecord{Composition: []string{"A", "B"}}
	set := rec.CompositionSet()
	if len(set) != 2 {
		t.Fatalf("set size = %d, want 2", len(set))
	}
	if _, ok := set["A"]; !ok {
		t.Error("missing A")
	}
}

func TestPrevDay(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2025-03-10", "2025-03-09"},
		{"2025-03-01", "2025-02-28"}, // month boundary
		{"2025-01-01", "2024-12-31"}, // year boundary
		{"2024-03-01", "2024-02-29"}, // leap year
	}
	for _, c := range cases {
		got, err := PrevDay(c.in)
		if err != nil {
			t.Errorf("PrevDay(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("PrevDay(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := PrevDay("garbage"); err == nil {
		t.Error("expected error for malformed date")
	}
}
