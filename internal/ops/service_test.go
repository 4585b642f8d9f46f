package ops

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/nutri/internal/catalog"
	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/logging"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	foods, err := catalog.DefaultFoods()
	require.NoError(t, err)

	clock := &testClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	book := ledger.NewBook(clock.Now, time.UTC)
	return NewService(book, catalog.New(foods...), food.DefaultGoals(), logging.Discard()), clock
}

func requireRemaining(t *testing.T, want, got food.Profile) {
	t.Helper()
	assert.InDelta(t, want.Kcal, got.Kcal, 1e-9)
	assert.InDelta(t, want.ProteinG, got.ProteinG, 1e-9)
	assert.InDelta(t, want.FatG, got.FatG, 1e-9)
	assert.InDelta(t, want.CarbG, got.CarbG, 1e-9)
}

func TestLogText_EndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.LogText(ctx, LogTextInput{Text: "200g poulet"})
	require.NoError(t, err)
	require.Len(t, out.Logged, 1)
	assert.Equal(t, "poulet", out.Logged[0].FoodName)
	assert.Equal(t, 200.0, out.Logged[0].Grams)
	assert.Equal(t, ledger.SourceCatalog, out.Logged[0].Source)
	requireRemaining(t, food.Profile{Kcal: 2770, ProteinG: 98, FatG: 82.8, CarbG: 400}, out.Remaining)
	assert.Contains(t, out.Message, "✅ **Enregistré**")

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	requireRemaining(t, out.Remaining, status.Remaining)
	assert.Equal(t, food.DefaultGoals(), status.Goals)
}

func TestLogText_UnknownFoodLeavesLedgerUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogText(ctx, LogTextInput{Text: "200g poulet"})
	require.NoError(t, err)
	before, err := svc.Status(ctx)
	require.NoError(t, err)

	_, err = svc.LogText(ctx, LogTextInput{Text: "100g licorne"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	after, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Today.Totals, after.Today.Totals)
	assert.Len(t, after.Today.Entries, 1)
}

func TestLogText_ParseErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogText(ctx, LogTextInput{Text: "poulet"})
	assert.True(t, errors.Is(err, errors.ErrNoQuantity))

	_, err = svc.LogText(ctx, LogTextInput{Text: "200g"})
	assert.True(t, errors.Is(err, errors.ErrEmptyFood))

	_, err = svc.LogText(ctx, LogTextInput{Text: "  "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = svc.LogText(ctx, LogTextInput{Text: ", ;"})
	assert.True(t, errors.Is(err, errors.ErrNoQuantity))

	status, _ := svc.Status(ctx)
	assert.True(t, status.Today.IsEmpty())
}

func TestLogText_MultipleItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.LogText(ctx, LogTextInput{Text: "200g poulet, 3 oeufs et 100g licorne"})
	require.NoError(t, err)
	require.Len(t, out.Logged, 2)
	assert.Equal(t, "oeuf", out.Logged[1].FoodName)
	assert.Equal(t, 180.0, out.Logged[1].Grams)

	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "100g licorne", out.Skipped[0].Text)
	assert.Equal(t, errors.ErrNotFound, out.Skipped[0].Code)
	assert.Contains(t, out.Message, "100g licorne: non trouvé")

	assert.Len(t, out.Today.Entries, 2)
}

func TestUndo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Undo(ctx)
	require.True(t, errors.Is(err, errors.ErrEmptyLedger))

	_, err = svc.LogText(ctx, LogTextInput{Text: "1 banane"})
	require.NoError(t, err)
	before, _ := svc.Status(ctx)

	_, err = svc.LogText(ctx, LogTextInput{Text: "200g poulet"})
	require.NoError(t, err)

	out, err := svc.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "poulet", out.Undone.FoodName)
	assert.Equal(t, before.Today.Totals, out.Today.Totals)
	assert.Contains(t, out.Message, "Entrée annulée")
}

func TestQuickAdd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.QuickAdd(ctx, QuickAddInput{Text: "30g 150kcal 10p 5l 8g"})
	require.NoError(t, err)
	require.Len(t, out.Logged, 1)

	e := out.Logged[0]
	assert.Equal(t, ManualFoodName, e.FoodName)
	assert.Equal(t, ledger.SourceManual, e.Source)
	assert.Equal(t, 30.0, e.Grams)
	assert.Equal(t, food.Profile{Kcal: 150, ProteinG: 10, FatG: 5, CarbG: 8}, e.Contribution)
	assert.Equal(t, 150.0, out.Today.Totals.Kcal)

	_, err = svc.QuickAdd(ctx, QuickAddInput{Text: "beaucoup"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestHistory_AcrossDays(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogText(ctx, LogTextInput{Text: "200g poulet"})
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	hist, err := svc.History(ctx)
	require.NoError(t, err)
	assert.True(t, hist.Today.IsEmpty())
	require.Len(t, hist.History, 1)
	assert.Equal(t, 330.0, hist.History[0].Totals.Kcal)
	assert.Contains(t, hist.Message, "**Hier**")

	// reads never roll; the roll still happens exactly once
	roll, err := svc.RollDay(ctx)
	require.NoError(t, err)
	assert.True(t, roll.Rolled)
	require.NotNil(t, roll.Closed)
	assert.Len(t, roll.Closed.Entries, 1)

	roll, err = svc.RollDay(ctx)
	require.NoError(t, err)
	assert.False(t, roll.Rolled)
	assert.Nil(t, roll.Closed)
}

func TestReminder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogText(ctx, LogTextInput{Text: "200g poulet"})
	require.NoError(t, err)

	out, err := svc.Reminder(ctx, feedback.ReminderRecap)
	require.NoError(t, err)
	assert.Equal(t, feedback.ReminderRecap, out.Kind)
	assert.Contains(t, out.Message, "08:00 - 200g poulet")
}

func TestAddFoodAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.AddFood(ctx, AddFoodInput{Definition: "Tofu fumé|160|16|9|2"})
	require.NoError(t, err)
	assert.Equal(t, "tofu fumé", out.Food.Name)

	logged, err := svc.LogText(ctx, LogTextInput{Text: "100g tofu fume"})
	require.NoError(t, err)
	assert.Equal(t, "tofu fumé", logged.Logged[0].FoodName)
	assert.Equal(t, 160.0, logged.Today.Totals.Kcal)

	_, err = svc.AddFood(ctx, AddFoodInput{Food: food.Food{Name: "barre maison", Basis: food.PerUnit, Profile: food.Profile{Kcal: 180}}})
	require.NoError(t, err)

	search, err := svc.SearchFoods(ctx, SearchFoodsInput{Query: "tofu"})
	require.NoError(t, err)
	require.NotEmpty(t, search.Matches)
	assert.Equal(t, "tofu fumé", search.Matches[0].Food.Name)

	search, err = svc.SearchFoods(ctx, SearchFoodsInput{Query: "poulet", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, search.Matches, 1)

	_, err = svc.SearchFoods(ctx, SearchFoodsInput{Query: " "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = svc.AddFood(ctx, AddFoodInput{Definition: "bad|x|1|1|1"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = svc.AddFood(ctx, AddFoodInput{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestService_ConcurrentLogging(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.LogText(ctx, LogTextInput{Text: "100g poulet"})
			_, _ = svc.Status(ctx)
		}()
	}
	wg.Wait()

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, status.Today.Entries, 20)
	assert.InDelta(t, 3300.0, status.Today.Totals.Kcal, 1e-6)
}

func TestPreview_DoesNotLog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.Preview(ctx, LogTextInput{Text: "200g poulet, 100g licorne"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, errors.ErrNotFound, out.Skipped[0].Code)
	assert.InDelta(t, 330, out.Total.Kcal, 1e-9)
	assert.InDelta(t, 62, out.Total.ProteinG, 1e-9)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.Today.Entries)

	_, err = svc.Preview(ctx, LogTextInput{Text: "poulet"})
	assert.True(t, errors.Is(err, errors.ErrNoQuantity))
}
