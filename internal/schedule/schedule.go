// Package schedule fires reminders and the midnight day roll on cron
// expressions evaluated in the configured time zone.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hpungsan/nutri/internal/config"
	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/notify"
	"github.com/hpungsan/nutri/internal/ops"
)

// Service is what the scheduler calls. Implemented by *ops.Service.
type Service interface {
	Reminder(ctx context.Context, kind feedback.ReminderKind) (*ops.ReminderOutput, error)
	RollDay(ctx context.Context) (*ops.RollOutput, error)
}

// Scheduler owns a cron runner and the jobs registered on it.
type Scheduler struct {
	cron     *cron.Cron
	svc      Service
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
	ctx      context.Context
}

// New creates a scheduler evaluating cron expressions in loc.
func New(svc Service, notifier notify.Notifier, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		svc:      svc,
		notifier: notifier,
		logger:   logging.Component(logger, logging.ComponentSchedule),
		now:      time.Now,
		loc:      loc,
		ctx:      context.Background(),
	}
}

// FromConfig creates a scheduler with the configured reminders and day roll.
func FromConfig(cfg *config.Config, svc Service, notifier notify.Notifier, logger *slog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	s := New(svc, notifier, loc, logger)
	if err := s.AddRoll(cfg.RollCron); err != nil {
		return nil, err
	}
	for _, r := range cfg.Reminders {
		kind, err := feedback.ParseReminderKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("reminder %q: %w", r.Name, err)
		}
		if err := s.AddReminder(r.Name, r.Cron, kind); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddReminder registers a reminder job on a standard 5-field cron spec.
func (s *Scheduler) AddReminder(name, spec string, kind feedback.ReminderKind) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.SendReminder(s.ctx, kind); err != nil {
			s.logger.Error("reminder failed", logging.FieldJob, name, logging.FieldError, err)
		}
	})
	if err != nil {
		return fmt.Errorf("reminder %q: invalid cron %q: %w", name, spec, err)
	}
	return nil
}

// AddRoll registers the day-roll job.
func (s *Scheduler) AddRoll(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Roll(s.ctx); err != nil {
			s.logger.Error("day roll failed", logging.FieldError, err)
		}
	})
	if err != nil {
		return fmt.Errorf("roll: invalid cron %q: %w", spec, err)
	}
	return nil
}

// SendReminder renders a reminder and hands it to the notifier.
func (s *Scheduler) SendReminder(ctx context.Context, kind feedback.ReminderKind) error {
	out, err := s.svc.Reminder(ctx, kind)
	if err != nil {
		return err
	}

	msg := notify.Message{
		Kind: string(kind),
		Date: out.Today.Date.String(),
		Text: out.Message,
		Sent: s.now(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	s.logger.InfoContext(ctx, "reminder sent", logging.FieldKind, string(kind), logging.FieldDate, msg.Date)
	return nil
}

// Roll closes the day if it changed.
func (s *Scheduler) Roll(ctx context.Context) error {
	_, err := s.svc.RollDay(ctx)
	return err
}

// Next returns the next activation of every job, soonest first.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Schedule.Next(s.now().In(s.loc)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Run starts the jobs and blocks until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", logging.FieldItems, len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}
