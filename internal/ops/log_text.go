package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/parse"
	"github.com/hpungsan/nutri/internal/resolve"
)

// LogTextInput contains parameters for the LogText operation.
type LogTextInput struct {
	Text string // one or more items: "200g poulet, 3 oeufs"
}

// SkippedItem is a fragment of the message that was not logged.
type SkippedItem struct {
	Text    string           `json:"text"`
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// LogOutput contains the result of a logging operation.
type LogOutput struct {
	Logged    []ledger.Entry     `json:"logged"`
	Skipped   []SkippedItem      `json:"skipped,omitempty"`
	Today     ledger.DailyLedger `json:"today"`
	Remaining food.Profile       `json:"remaining"`
	Message   string             `json:"message"`
}

// LogText parses, resolves and logs every item of a free-text message.
// Items are resolved before anything is appended; when none can be logged
// the first item's error is returned and the ledger is untouched. Otherwise
// the resolved items are appended together and the others reported as skipped.
func (s *Service) LogText(ctx context.Context, input LogTextInput) (*LogOutput, error) {
	entries, skipped, err := s.resolveText(input.Text)
	if err != nil {
		s.logError(ctx, "log_text", err)
		return nil, err
	}

	today := s.book.Append(entries...)
	s.logger.InfoContext(ctx, "entries logged",
		logging.FieldItems, len(entries),
		logging.FieldSkipped, len(skipped),
		logging.FieldDate, today.Date.String(),
	)

	return &LogOutput{
		Logged:    entries,
		Skipped:   toSkippedItems(skipped),
		Today:     today,
		Remaining: today.Remaining(s.goals),
		Message:   feedback.Logged(entries, skipped, today, s.goals),
	}, nil
}

// resolveText resolves every item of text. It fails only when no item
// resolves, with the first item's error.
func (s *Service) resolveText(text string) ([]ledger.Entry, []feedback.Skipped, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, errors.NewInvalidRequest("text is required")
	}

	items := parse.Split(text)
	if len(items) == 0 {
		return nil, nil, errors.NewNoQuantity(text)
	}

	now := s.book.Now()
	entries := make([]ledger.Entry, 0, len(items))
	skipped := make([]feedback.Skipped, 0)
	var firstErr error

	for _, item := range items {
		e, err := s.resolveItem(item, now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			skipped = append(skipped, feedback.Skipped{Text: item, Err: err})
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, nil, firstErr
	}
	return entries, skipped, nil
}

func (s *Service) resolveItem(item string, now time.Time) (ledger.Entry, error) {
	q, err := parse.Parse(item)
	if err != nil {
		return ledger.Entry{}, err
	}
	res, err := s.resolver.Resolve(q)
	if err != nil {
		return ledger.Entry{}, err
	}
	return ledger.NewEntry(now, res.Food.Name, q, resolve.Grams(res.Food, q), res.Contribution, ledger.SourceCatalog), nil
}

func toSkippedItems(skipped []feedback.Skipped) []SkippedItem {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]SkippedItem, len(skipped))
	for i, sk := range skipped {
		out[i] = SkippedItem{Text: sk.Text, Code: errors.ErrInternal, Message: sk.Err.Error()}
		if nErr, ok := errors.As(sk.Err); ok {
			out[i].Code = nErr.Code
			out[i].Message = nErr.Message
		}
	}
	return out
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	Items   []ledger.Entry `json:"items"`
	Skipped []SkippedItem  `json:"skipped,omitempty"`
	Total   food.Profile   `json:"total"`
}

// Preview resolves a message like LogText without touching the ledger.
func (s *Service) Preview(ctx context.Context, input LogTextInput) (*PreviewOutput, error) {
	entries, skipped, err := s.resolveText(input.Text)
	if err != nil {
		s.logError(ctx, "preview", err)
		return nil, err
	}

	var total food.Profile
	for _, e := range entries {
		total = total.Add(e.Contribution)
	}
	return &PreviewOutput{Items: entries, Skipped: toSkippedItems(skipped), Total: total}, nil
}

// QuickAddInput contains parameters for the QuickAdd operation.
type QuickAddInput struct {
	Text string // "[30g] 150kcal 10p 5l 8g"
}

// ManualFoodName labels entries logged with typed-in macros.
const ManualFoodName = "ajout manuel"

// QuickAdd logs an entry whose macros are given directly, bypassing the catalog.
func (s *Service) QuickAdd(ctx context.Context, input QuickAddInput) (*LogOutput, error) {
	m, err := parse.ParseQuickAdd(input.Text)
	if err != nil {
		return nil, err
	}
	if err := m.Profile.Validate(); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	q := parse.Quantity{Amount: m.Grams, Unit: parse.Grams, FoodToken: ManualFoodName}
	e := ledger.NewEntry(s.book.Now(), ManualFoodName, q, m.Grams, m.Profile, ledger.SourceManual)
	today := s.book.Append(e)

	s.logger.InfoContext(ctx, "manual entry logged", logging.FieldDate, today.Date.String())

	return &LogOutput{
		Logged:    []ledger.Entry{e},
		Today:     today,
		Remaining: today.Remaining(s.goals),
		Message:   feedback.QuickAdded(e, today, s.goals),
	}, nil
}
