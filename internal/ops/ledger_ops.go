package ops

import (
	"context"

	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/logging"
)

// UndoOutput contains the result of the Undo operation.
type UndoOutput struct {
	Undone    ledger.Entry       `json:"undone"`
	Today     ledger.DailyLedger `json:"today"`
	Remaining food.Profile       `json:"remaining"`
	Message   string             `json:"message"`
}

// Undo removes today's most recent entry. Fails with EMPTY_LEDGER when
// there is nothing to undo today.
func (s *Service) Undo(ctx context.Context) (*UndoOutput, error) {
	e, today, err := s.book.UndoLast()
	if err != nil {
		s.logError(ctx, "undo", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "entry undone", logging.FieldFood, e.FoodName, logging.FieldDate, today.Date.String())

	return &UndoOutput{
		Undone:    e,
		Today:     today,
		Remaining: today.Remaining(s.goals),
		Message:   feedback.Undone(e, today, s.goals),
	}, nil
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	Today     ledger.DailyLedger `json:"today"`
	Goals     food.Goals         `json:"goals"`
	Remaining food.Profile       `json:"remaining"`
	Message   string             `json:"message"`
}

// Status reports today's totals against goals. Read-only.
func (s *Service) Status(ctx context.Context) (*StatusOutput, error) {
	today := s.view().Today
	return &StatusOutput{
		Today:     today,
		Goals:     s.goals,
		Remaining: today.Remaining(s.goals),
		Message:   feedback.Status(today, s.goals),
	}, nil
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Today   ledger.DailyLedger   `json:"today"`
	History []ledger.DailyLedger `json:"history"`
	Message string               `json:"message"`
}

// History reports today and the closed days, most recent first. Read-only.
func (s *Service) History(ctx context.Context) (*HistoryOutput, error) {
	snap := s.view()
	return &HistoryOutput{
		Today:   snap.Today,
		History: snap.History,
		Message: feedback.History(snap, s.goals),
	}, nil
}

// ReminderOutput contains a rendered scheduled reminder.
type ReminderOutput struct {
	Kind    feedback.ReminderKind `json:"kind"`
	Today   ledger.DailyLedger    `json:"today"`
	Message string                `json:"message"`
}

// Reminder renders a scheduled status of the given kind. Read-only.
func (s *Service) Reminder(ctx context.Context, kind feedback.ReminderKind) (*ReminderOutput, error) {
	today := s.view().Today
	return &ReminderOutput{
		Kind:    kind,
		Today:   today,
		Message: feedback.Reminder(kind, today, s.goals, s.book.Location()),
	}, nil
}

// RollOutput contains the result of the RollDay operation.
type RollOutput struct {
	Rolled bool                `json:"rolled"`
	Closed *ledger.DailyLedger `json:"closed,omitempty"`
	Today  ledger.Date         `json:"today"`
}

// RollDay closes the active ledger if the calendar day changed. Safe to call
// repeatedly.
func (s *Service) RollDay(ctx context.Context) (*RollOutput, error) {
	today := s.book.Today()
	closed, rolled := s.book.RollDay(today)
	out := &RollOutput{Rolled: rolled, Today: today}
	if rolled {
		out.Closed = &closed
		s.logger.InfoContext(ctx, "day closed",
			logging.FieldDate, closed.Date.String(),
			logging.FieldItems, len(closed.Entries),
		)
	}
	return out, nil
}
