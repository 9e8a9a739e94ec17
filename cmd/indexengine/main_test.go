package main

import (
	"testing"
	"time"

	"index-systemv1/internal/markethours"
)

func TestParseRecompute(t *testing.T) {
	cases := []struct {
		payload string
		from    string
		to      string
	}{
		{"2025-01-01,2025-02-01", "2025-01-01", "2025-02-01"},
		{"2025-01-01,", "2025-01-01", ""},
		{",2025-02-01", "", "2025-02-01"},
		{"2025-01-01", "2025-01-01", ""},
		{"", "", ""},
		{" 2025-01-01 , 2025-02-01 ", "2025-01-01", "2025-02-01"},
	}
	for _, c := range cases {
		from, to := parseRecompute(c.payload)
		if from != c.from || to != c.to {
			t.Errorf("parseRecompute(%q) = (%q, %q), want (%q, %q)", c.payload, from, to, c.from, c.to)
		}
	}
}

func TestLookbackFrom(t *testing.T) {
	want := time.Now().In(markethours.NewYork).AddDate(0, 0, -30).Format("2006-01-02")
	if got := lookbackFrom(30); got != want {
		t.Errorf("lookbackFrom(30) = %q, want %q", got, want)
	}
}
