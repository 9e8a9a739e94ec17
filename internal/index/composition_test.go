package index

import (
	"errors"
	"reflect"
	"testing"

	"index-systemv1/internal/model"
)

func rec(date string, tickers ...string) model.IndexRecord {
	return model.IndexRecord{Date: date, IndexValue: 1, Composition: tickers}
}

func TestChangeAt(t *testing.T) {
	series := []model.IndexRecord{
		rec("2025-03-03", "A", "B", "C"),
		rec("2025-03-04", "A", "B", "D"),
	}

	change, err := ChangeAt(series, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Date != "2025-03-04" {
		t.Errorf("change date = %s, want 2025-03-04", change.Date)
	}
	if !reflect.DeepEqual(change.Added, []string{"D"}) {
		t.Errorf("added = %v, want [D]", change.Added)
	}
	if !reflect.DeepEqual(change.Removed, []string{"C"}) {
		t.Errorf("removed = %v, want [C]", change.Removed)
	}
}

func TestChangeAt_FirstRecord(t *testing.T) {
	series := []model.IndexRecord{rec("2025-03-03", "A")}

	_, err := ChangeAt(series, 0)
	if !errors.Is(err, ErrNoPrior) {
		t.Errorf("expected ErrNoPrior, got %v", err)
	}
}

func TestChangeAt_OrderDoesNotCount(t *testing.T) {
	series := []model.IndexRecord{
		rec("2025-03-03", "A", "B", "C"),
		rec("2025-03-04", "C", "A", "B"),
	}

	change, err := ChangeAt(series, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.None() {
		t.Errorf("reordered composition flagged as change: %+v", change)
	}
}

func TestChangeDates(t *testing.T) {
	series := []model.IndexRecord{
		rec("2025-03-03", "A", "B"),
		rec("2025-03-04", "A", "B"), // no change
		rec("2025-03-05", "A", "C"), // change
		rec("2025-03-06", "A", "C"), // no change
		rec("2025-03-07", "B", "C"), // change
	}

	dates := ChangeDates(series)
	want := []string{"2025-03-05", "2025-03-07"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("change dates = %v, want %v", dates, want)
	}
}

func TestChanges(t *testing.T) {
	series := []model.IndexRecord{
		rec("2025-03-03", "A", "B"),
		rec("2025-03-04", "B", "D"),
	}

	changes := Changes(series)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if !reflect.DeepEqual(changes[0].Added, []string{"D"}) || !reflect.DeepEqual(changes[0].Removed, []string{"A"}) {
		t.Errorf("change = %+v", changes[0])
	}
}

func TestChangeDates_EmptyAndSingle(t *testing.T) {
	if dates := ChangeDates(nil); len(dates) != 0 {
		t.Errorf("empty series: got %v", dates)
	}
	if dates := ChangeDates([]model.IndexRecord{rec("2025-03-03", "A")}); len(dates) != 0 {
		t.Errorf("single record: got %v", dates)
	}
}
