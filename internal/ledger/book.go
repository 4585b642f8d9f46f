package ledger

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the book's state.
type Snapshot struct {
	Today   DailyLedger   `json:"today"`
	History []DailyLedger `json:"history"`
}

// Book owns the active ledger and the history. All mutations happen under
// one lock, so appends, undos and day rolls never interleave.
type Book struct {
	mu      sync.Mutex
	active  DailyLedger
	history History
	now     func() time.Time
	loc     *time.Location
}

// NewBook creates a book whose active ledger is today's in loc.
// A nil now means time.Now; a nil loc means time.Local.
func NewBook(now func() time.Time, loc *time.Location) *Book {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	b := &Book{now: now, loc: loc}
	b.active = NewDailyLedger(b.Today())
	return b
}

// Now returns the book clock's current time in the book's location.
func (b *Book) Now() time.Time {
	return b.now().In(b.loc)
}

// Today returns the current calendar day in the book's location.
func (b *Book) Today() Date {
	return DateOf(b.now(), b.loc)
}

// Location returns the book's time zone.
func (b *Book) Location() *time.Location {
	return b.loc
}

// Append rolls the day if needed, appends entries in order and returns the
// updated active ledger.
func (b *Book) Append(entries ...Entry) DailyLedger {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll(b.Today())
	for _, e := range entries {
		b.active.Append(e)
	}
	return b.active.Clone()
}

// UndoLast rolls the day if needed and removes today's last entry.
// It fails with EMPTY_LEDGER when today has no entries.
func (b *Book) UndoLast() (Entry, DailyLedger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll(b.Today())
	e, err := b.active.UndoLast()
	if err != nil {
		return Entry{}, b.active.Clone(), err
	}
	return e, b.active.Clone(), nil
}

// RollDay closes the active ledger into history when today differs from its
// date. Calling it again on the same day is a no-op. It returns the closed
// ledger and whether a roll happened.
func (b *Book) RollDay(today Date) (DailyLedger, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roll(today)
}

func (b *Book) roll(today Date) (DailyLedger, bool) {
	if b.active.Date == today {
		return DailyLedger{}, false
	}
	closed := b.active
	b.history.Record(closed)
	b.active = NewDailyLedger(today)
	return closed.Clone(), true
}

// View returns the state as it would be after rolling to today, without
// mutating the book.
func (b *Book) View(today Date) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active.Date == today {
		return Snapshot{Today: b.active.Clone(), History: b.history.List()}
	}

	projected := History{ledgers: b.history.List()}
	projected.Record(b.active.Clone())
	return Snapshot{Today: NewDailyLedger(today), History: projected.ledgers}
}
