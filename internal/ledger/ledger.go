// Package ledger holds the day's food entries, their running totals and the
// last few closed days.
package ledger

import (
	"time"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/id"
	"github.com/hpungsan/nutri/internal/parse"
)

// Source tells where an entry's macros came from.
type Source string

const (
	// SourceCatalog entries were resolved against the food catalog.
	SourceCatalog Source = "catalog"
	// SourceManual entries carry macros typed in by the user.
	SourceManual Source = "manual"
)

// Entry is one logged food. Entries are never modified after creation.
type Entry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	FoodName     string         `json:"food_name"`
	Quantity     parse.Quantity `json:"quantity"`
	Grams        float64        `json:"grams,omitempty"`
	Contribution food.Profile   `json:"contribution"`
	Source       Source         `json:"source"`
}

// NewEntry builds an entry with a fresh ULID.
func NewEntry(ts time.Time, foodName string, q parse.Quantity, grams float64, contribution food.Profile, source Source) Entry {
	return Entry{
		ID:           id.New(ts),
		Timestamp:    ts,
		FoodName:     foodName,
		Quantity:     q,
		Grams:        grams,
		Contribution: contribution,
		Source:       source,
	}
}

// DailyLedger is the ordered list of entries for one day.
// Totals always equals the sum of the entries' contributions.
type DailyLedger struct {
	Date    Date         `json:"date"`
	Entries []Entry      `json:"entries"`
	Totals  food.Profile `json:"totals"`
}

// NewDailyLedger returns an empty ledger for d.
func NewDailyLedger(d Date) DailyLedger {
	return DailyLedger{Date: d, Entries: []Entry{}}
}

// Append adds e at the end and updates totals.
func (l *DailyLedger) Append(e Entry) {
	l.Entries = append(l.Entries, e)
	l.Totals = l.Totals.Add(e.Contribution)
}

// UndoLast removes and returns the most recent entry. Totals are recomputed
// in insertion order, so they match exactly what they were before that entry
// was appended.
func (l *DailyLedger) UndoLast() (Entry, error) {
	if len(l.Entries) == 0 {
		return Entry{}, errors.NewEmptyLedger()
	}

	last := l.Entries[len(l.Entries)-1]
	l.Entries = l.Entries[:len(l.Entries)-1]
	l.Totals = sum(l.Entries)
	return last, nil
}

// Remaining returns goals minus totals. Negative components mean the goal is
// exceeded; they are not floored.
func (l DailyLedger) Remaining(goals food.Goals) food.Profile {
	return goals.Sub(l.Totals)
}

// IsEmpty reports whether the ledger has no entries.
func (l DailyLedger) IsEmpty() bool {
	return len(l.Entries) == 0
}

// Clone returns a copy that shares nothing mutable with l.
func (l DailyLedger) Clone() DailyLedger {
	entries := make([]Entry, len(l.Entries))
	copy(entries, l.Entries)
	l.Entries = entries
	return l
}

func sum(entries []Entry) food.Profile {
	var total food.Profile
	for _, e := range entries {
		total = total.Add(e.Contribution)
	}
	return total
}
