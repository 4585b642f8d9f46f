package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestBook() (*Book, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	return NewBook(clock.Now, time.UTC), clock
}

func TestBook_AppendAndUndo(t *testing.T) {
	b, _ := newTestBook()

	l := b.Append(entry("poulet", food.Profile{Kcal: 330, ProteinG: 62, FatG: 7.2}))
	assert.Equal(t, b.Today(), l.Date)
	assert.Len(t, l.Entries, 1)

	e, l, err := b.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, "poulet", e.FoodName)
	assert.True(t, l.IsEmpty())

	_, _, err = b.UndoLast()
	assert.True(t, errors.Is(err, errors.ErrEmptyLedger))
}

func TestBook_RollDayIdempotent(t *testing.T) {
	b, clock := newTestBook()
	b.Append(entry("a", food.Profile{Kcal: 100}))

	clock.Set(clock.Now().Add(24 * time.Hour))
	today := b.Today()

	closed, rolled := b.RollDay(today)
	require.True(t, rolled)
	assert.Equal(t, 100.0, closed.Totals.Kcal)

	_, rolled = b.RollDay(today)
	assert.False(t, rolled, "second roll on the same day is a no-op")

	snap := b.View(today)
	assert.True(t, snap.Today.IsEmpty())
	require.Len(t, snap.History, 1, "a ledger is closed at most once")
	assert.Equal(t, 100.0, snap.History[0].Totals.Kcal)
}

func TestBook_LazyRollOnWrite(t *testing.T) {
	b, clock := newTestBook()
	b.Append(entry("a", food.Profile{Kcal: 100}))

	clock.Set(clock.Now().Add(24 * time.Hour))
	l := b.Append(entry("b", food.Profile{Kcal: 50}))
	assert.Equal(t, 50.0, l.Totals.Kcal)

	// the scheduler's eager roll arrives late and converges
	_, rolled := b.RollDay(b.Today())
	assert.False(t, rolled)

	snap := b.View(b.Today())
	require.Len(t, snap.History, 1)
	assert.Equal(t, 100.0, snap.History[0].Totals.Kcal)
}

func TestBook_UndoAfterMidnightDoesNotTouchYesterday(t *testing.T) {
	b, clock := newTestBook()
	b.Append(entry("a", food.Profile{Kcal: 100}))

	clock.Set(clock.Now().Add(24 * time.Hour))
	_, _, err := b.UndoLast()
	assert.True(t, errors.Is(err, errors.ErrEmptyLedger))

	snap := b.View(b.Today())
	require.Len(t, snap.History, 1)
	assert.Len(t, snap.History[0].Entries, 1)
}

func TestBook_ViewDoesNotMutate(t *testing.T) {
	b, clock := newTestBook()
	b.Append(entry("a", food.Profile{Kcal: 100}))
	yesterday := b.Today()

	clock.Set(clock.Now().Add(24 * time.Hour))
	snap := b.View(b.Today())
	assert.True(t, snap.Today.IsEmpty())
	require.Len(t, snap.History, 1)
	assert.Equal(t, yesterday, snap.History[0].Date)

	// the active ledger is still yesterday's until a write or a roll
	again := b.View(yesterday)
	assert.Len(t, again.Today.Entries, 1)
	assert.Empty(t, again.History)
}

func TestBook_HistoryCapacityAcrossDays(t *testing.T) {
	b, clock := newTestBook()

	for i := 0; i < 5; i++ {
		b.Append(entry("a", food.Profile{Kcal: float64(i + 1)}))
		clock.Set(clock.Now().Add(24 * time.Hour))
		b.RollDay(b.Today())
	}

	snap := b.View(b.Today())
	require.Len(t, snap.History, HistoryCapacity)
	assert.Equal(t, 5.0, snap.History[0].Totals.Kcal)
	assert.Equal(t, 3.0, snap.History[2].Totals.Kcal)
}

func TestBook_ConcurrentAppends(t *testing.T) {
	b, _ := newTestBook()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Append(entry("a", food.Profile{Kcal: 1}))
		}()
	}
	wg.Wait()

	snap := b.View(b.Today())
	assert.Len(t, snap.Today.Entries, 50)
	assert.Equal(t, 50.0, snap.Today.Totals.Kcal)
}

func TestBook_TimeZone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)}
	b := NewBook(clock.Now, paris)

	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 10}, b.Today())
	clock.Set(time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 11}, b.Today())
	assert.Equal(t, paris, b.Location())
}
