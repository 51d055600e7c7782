// Package reminder plans and fires event reminders. It keeps a single
// cancellable one-time job per event id on top of gocron, with replace
// semantics on schedule and a store lookup at fire time.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/event"
	"github.com/Kengston/banhBao/internal/timeutil"
)

// LeadTime is how long before an event's due instant its reminder fires.
const LeadTime = 10 * time.Minute

// Notifier delivers rendered reminder text to a chat. Delivery failures are
// logged by the scheduler, never retried.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text, link string) error
}

// jobEntry is one outstanding timer for an event id.
type jobEntry struct {
	jobID  uuid.UUID
	fireAt time.Time
}

// Scheduler owns the job table. It holds only event ids, never event copies;
// the event is resolved in the store at fire time so an edit after scheduling
// is never delivered stale.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	clock     clockwork.Clock
	loc       *time.Location
	store     *event.Store
	notifier  Notifier
	msgs      config.Messages

	mu      sync.Mutex
	jobs    map[string]jobEntry
	running bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the scheduler's clock, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// NewScheduler creates a reminder scheduler over the given store and notifier.
func NewScheduler(logger *slog.Logger, loc *time.Location, store *event.Store, notifier Notifier, msgs config.Messages, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Scheduler{
		logger:   logger.With("component", "reminder_scheduler"),
		clock:    clockwork.NewRealClock(),
		loc:      loc,
		store:    store,
		notifier: notifier,
		msgs:     msgs,
		jobs:     make(map[string]jobEntry),
	}
	for _, opt := range opts {
		opt(s)
	}

	gs, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithClock(s.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s.scheduler = gs

	return s, nil
}

// Schedule plans the reminder for an event, replacing any existing job for
// the same id. If the reminder instant is not strictly in the future no job
// is created; a past-due event simply never reminds, which avoids a backlog
// of instant reminders after downtime.
func (s *Scheduler) Schedule(ev event.Event) {
	fireAt := ev.DueAt.Add(-LeadTime)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(ev.ID)

	if !fireAt.After(s.clock.Now()) {
		s.logger.Debug("Reminder instant already past, not scheduling", "event_id", ev.ID, "fire_at", fireAt)
		return
	}

	job, err := s.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(fireAt)),
		gocron.NewTask(s.fire, context.Background(), ev.ID),
		gocron.WithName(ev.ID),
	)
	if err != nil {
		s.logger.Error("Failed to schedule reminder", "event_id", ev.ID, "fire_at", fireAt, "error", err)
		return
	}

	s.jobs[ev.ID] = jobEntry{jobID: job.ID(), fireAt: fireAt}
	s.logger.Info("Scheduled reminder", "event_id", ev.ID, "fire_at", fireAt)
}

// Cancel removes any pending reminder for the event id. Cancelling an id
// with no job is a no-op.
func (s *Scheduler) Cancel(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(eventID)
}

// cancelLocked removes the job table entry and its gocron job. Caller must
// hold s.mu.
func (s *Scheduler) cancelLocked(eventID string) {
	entry, ok := s.jobs[eventID]
	if !ok {
		return
	}
	delete(s.jobs, eventID)

	if err := s.scheduler.RemoveJob(entry.jobID); err != nil {
		// The job may have just fired; the fire handler tolerates that.
		s.logger.Debug("Could not remove gocron job", "event_id", eventID, "error", err)
	}
	s.logger.Info("Cancelled reminder", "event_id", eventID)
}

// fire runs at the reminder instant. The event is resolved by id; an event
// deleted after scheduling is skipped silently.
func (s *Scheduler) fire(ctx context.Context, eventID string) {
	s.mu.Lock()
	delete(s.jobs, eventID)
	s.mu.Unlock()

	ev, ok := s.store.Get(eventID)
	if !ok {
		s.logger.Debug("Event gone before reminder fired, skipping", "event_id", eventID)
		return
	}

	text := fmt.Sprintf(s.msgs.Reminder, ev.Title, timeutil.FormatLocal(ev.DueAt, s.loc))
	if err := s.notifier.Notify(ctx, ev.ChatID, text, ev.Link); err != nil {
		s.logger.Error("Failed to deliver reminder", "event_id", eventID, "chat_id", ev.ChatID, "error", err)
		return
	}
	s.logger.Info("Delivered reminder", "event_id", eventID, "chat_id", ev.ChatID)
}

// PlanAll schedules a reminder for every stored event. Called on process
// start; events whose lead time has already passed are naturally dropped,
// which makes the job table fully derivable from the store.
func (s *Scheduler) PlanAll() {
	events := s.store.All()
	for _, ev := range events {
		s.Schedule(ev)
	}
	s.logger.Info("Planned reminders from store", "events", len(events), "jobs", s.PendingCount())
}

// PendingCount reports the number of outstanding reminder jobs.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// FireAt reports the planned fire instant for an event id, if a job exists.
func (s *Scheduler) FireAt(eventID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[eventID]
	return entry.fireAt, ok
}

// Start begins the scheduler's internal ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.scheduler.Start()
	s.running = true
	s.logger.Info("Reminder scheduler started", "pending_jobs", len(s.jobs))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
		return err
	}
	s.logger.Info("Reminder scheduler stopped")
	return nil
}
