package index

import (
	"errors"
	"sort"

	"index-systemv1/internal/model"
)

// ErrNoPrior marks a change query against the first record of a series,
// which has nothing to compare against. It is distinct from a zero-diff
// comparison, which is a valid "no change" result.
var ErrNoPrior = errors.New("no prior record to compare against")

// Change describes how the constituent set moved between two consecutive
// records. Added and Removed are sorted for deterministic output.
type Change struct {
	Date    string   `json:"date"` // the later record's date
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// None reports whether the constituent sets were identical.
func (c Change) None() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// ChangeAt diffs record i of the series against record i-1 by set
// difference. Order within a composition does not count as a change.
// Returns ErrNoPrior for i = 0.
func ChangeAt(series []model.IndexRecord, i int) (Change, error) {
	if i <= 0 || i >= len(series) {
		return Change{}, ErrNoPrior
	}

	prev := series[i-1].CompositionSet()
	curr := series[i].CompositionSet()

	change := Change{Date: series[i].Date, Added: []string{}, Removed: []string{}}
	for t := range curr {
		if _, ok := prev[t]; !ok {
			change.Added = append(change.Added, t)
		}
	}
	for t := range prev {
		if _, ok := curr[t]; !ok {
			change.Removed = append(change.Removed, t)
		}
	}
	sort.Strings(change.Added)
	sort.Strings(change.Removed)
	return change, nil
}

// ChangeDates returns the dates on which the constituent set differs from the
// previous record's, in series order. The first record can never appear.
func ChangeDates(series []model.IndexRecord) []string {
	var dates []string
	for i := 1; i < len(series); i++ {
		change, err := ChangeAt(series, i)
		if err != nil {
			continue
		}
		if !change.None() {
			dates = append(dates, change.Date)
		}
	}
	return dates
}

// Changes returns the full change events (date plus added/removed tickers)
// for a series, skipping no-change pairs.
func Changes(series []model.IndexRecord) []Change {
	var changes []Change
	for i := 1; i < len(series); i++ {
		change, err := ChangeAt(series, i)
		if err != nil {
			continue
		}
		if !change.None() {
			changes = append(changes, change)
		}
	}
	return changes
}
