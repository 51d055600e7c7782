package reminder

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/event"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		panic(err)
	}
	return loc
}()

type notifySpy struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	chatID int64
	text   string
	link   string
}

func (n *notifySpy) Notify(_ context.Context, chatID int64, text, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{chatID, text, link})
	return nil
}

func (n *notifySpy) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *event.Store, *notifySpy) {
	t.Helper()

	store := event.NewStore(filepath.Join(t.TempDir(), "events.json"), testLoc, nil)
	spy := &notifySpy{}
	s, err := NewScheduler(nil, testLoc, store, spy, config.DefaultMessages,
		WithClock(clockwork.NewFakeClockAt(now)))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s, store, spy
}

func TestSchedule_FiresLeadTimeBeforeDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, _ := newTestScheduler(t, now)

	due := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)
	ev := event.New(42, due, "Standup", "")
	store.Put(ev)
	s.Schedule(ev)

	fireAt, ok := s.FireAt(ev.ID)
	if !ok {
		t.Fatal("no job planned for future event")
	}
	if want := due.Add(-LeadTime); !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestSchedule_PastReminderInstantMakesNoJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 9, 55, 0, 0, testLoc)
	s, store, _ := newTestScheduler(t, now)

	// Due in 5 minutes: the reminder instant (due − 10min) is already past.
	due := now.Add(5 * time.Minute)
	ev := event.New(42, due, "Too soon", "")
	store.Put(ev)
	s.Schedule(ev)

	if _, ok := s.FireAt(ev.ID); ok {
		t.Error("job planned although reminder instant is in the past")
	}
	if got := s.PendingCount(); got != 0 {
		t.Errorf("PendingCount = %d, want 0", got)
	}
}

func TestSchedule_ReplacesExistingJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, _ := newTestScheduler(t, now)

	ev := event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "Standup", "")
	store.Put(ev)
	s.Schedule(ev)

	// Same id, later due instant: the old timer is superseded.
	ev.DueAt = time.Date(2030, 1, 2, 10, 0, 0, 0, testLoc)
	store.Put(ev)
	s.Schedule(ev)

	if got := s.PendingCount(); got != 1 {
		t.Fatalf("PendingCount = %d, want 1", got)
	}
	fireAt, _ := s.FireAt(ev.ID)
	if want := ev.DueAt.Add(-LeadTime); !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestCancel_DropsJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, spy := newTestScheduler(t, now)

	ev := event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "Standup", "")
	store.Put(ev)
	s.Schedule(ev)
	s.Cancel(ev.ID)

	if _, ok := s.FireAt(ev.ID); ok {
		t.Error("job still planned after Cancel")
	}
	if spy.count() != 0 {
		t.Errorf("notifier called %d times, want 0", spy.count())
	}

	s.Cancel("no-such-id") // no-op, never an error
}

func TestFire_DeliversReminder(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, spy := newTestScheduler(t, now)

	due := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)
	ev := event.New(42, due, "Standup", "https://meet.example/abc")
	store.Put(ev)
	s.Schedule(ev)

	s.fire(context.Background(), ev.ID)

	if spy.count() != 1 {
		t.Fatalf("notifier called %d times, want 1", spy.count())
	}
	call := spy.calls[0]
	if call.chatID != 42 {
		t.Errorf("chatID = %d, want 42", call.chatID)
	}
	if call.link != "https://meet.example/abc" {
		t.Errorf("link = %q, want event link", call.link)
	}
	if _, ok := s.FireAt(ev.ID); ok {
		t.Error("job still in table after firing")
	}
}

func TestFire_DeletedEventIsSkippedSilently(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, spy := newTestScheduler(t, now)

	ev := event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "Standup", "")
	store.Put(ev)
	s.Schedule(ev)

	// Deleted after scheduling but before firing: the race the design
	// tolerates rather than prevents.
	store.Remove(ev.ID)
	s.fire(context.Background(), ev.ID)

	if spy.count() != 0 {
		t.Errorf("notifier called %d times, want 0", spy.count())
	}
}

func TestPlanAll_DerivesJobsFromStore(t *testing.T) {
	t.Parallel()

	now := time.Date(2029, 12, 31, 12, 0, 0, 0, testLoc)
	s, store, _ := newTestScheduler(t, now)

	future := event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "Future", "")
	past := event.New(42, time.Date(2020, 1, 1, 10, 0, 0, 0, testLoc), "Past", "")
	store.Put(future)
	store.Put(past)

	s.PlanAll()

	if _, ok := s.FireAt(future.ID); !ok {
		t.Error("no job for future event after PlanAll")
	}
	if _, ok := s.FireAt(past.ID); ok {
		t.Error("job planned for past event after PlanAll")
	}
	if got := s.PendingCount(); got != 1 {
		t.Errorf("PendingCount = %d, want 1", got)
	}
}
