package index

import (
	"errors"
	"testing"

	"index-systemv1/internal/model"
)

// fakeIndexReader serves records from a map and counts queries.
type fakeIndexReader struct {
	records map[string]model.IndexRecord
	queried []string
}

func (f *fakeIndexReader) IndexRecordAt(date string) (*model.IndexRecord, error) {
	f.queried = append(f.queried, date)
	if rec, ok := f.records[date]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeIndexReader) IndexSeries(from, to string) ([]model.IndexRecord, error) {
	return nil, nil
}

func TestLookup_ExactHit(t *testing.T) {
	reader := &fakeIndexReader{records: map[string]model.IndexRecord{
		"2025-03-07": {Date: "2025-03-07", IndexValue: 42},
	}}

	rec, used, err := Lookup(reader, "2025-03-07", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "2025-03-07" {
		t.Errorf("used date = %s, want 2025-03-07", used)
	}
	if rec.IndexValue != 42 {
		t.Errorf("value = %v, want 42", rec.IndexValue)
	}
	if len(reader.queried) != 1 {
		t.Errorf("queried %d times, want 1", len(reader.queried))
	}
}

func TestLookup_WeekendFallback(t *testing.T) {
	// Sunday query falls back to Friday's record, two steps.
	reader := &fakeIndexReader{records: map[string]model.IndexRecord{
		"2025-03-07": {Date: "2025-03-07", IndexValue: 42},
	}}

	rec, used, err := Lookup(reader, "2025-03-09", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "2025-03-07" {
		t.Errorf("used date = %s, want 2025-03-07", used)
	}
	if rec == nil || rec.Date != "2025-03-07" {
		t.Errorf("record = %+v", rec)
	}
}

func TestLookup_Miss(t *testing.T) {
	reader := &fakeIndexReader{records: map[string]model.IndexRecord{}}

	_, _, err := Lookup(reader, "2025-03-09", 5)
	if err == nil {
		t.Fatal("expected miss error, got nil")
	}
	var miss *LookupMissError
	if !errors.As(err, &miss) {
		t.Fatalf("expected *LookupMissError, got %T: %v", err, err)
	}
	if miss.Requested != "2025-03-09" {
		t.Errorf("requested = %s, want 2025-03-09", miss.Requested)
	}
	if miss.LastTried != "2025-03-04" {
		t.Errorf("last tried = %s, want 2025-03-04", miss.LastTried)
	}
	// Requested day plus 5 fallback days.
	if len(reader.queried) != 6 {
		t.Errorf("queried %d times, want 6", len(reader.queried))
	}
}

func TestLookup_DefaultSteps(t *testing.T) {
	reader := &fakeIndexReader{records: map[string]model.IndexRecord{}}

	_, _, err := Lookup(reader, "2025-03-09", 0)
	var miss *LookupMissError
	if !errors.As(err, &miss) {
		t.Fatalf("expected *LookupMissError, got %v", err)
	}
	if miss.Steps != DefaultFallbackDays {
		t.Errorf("steps = %d, want %d", miss.Steps, DefaultFallbackDays)
	}
}

func TestLookup_InvalidDate(t *testing.T) {
	reader := &fakeIndexReader{records: map[string]model.IndexRecord{}}

	_, _, err := Lookup(reader, "not-a-date", 2)
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	var miss *LookupMissError
	if errors.As(err, &miss) {
		t.Errorf("invalid date should not surface as a lookup miss")
	}
}
