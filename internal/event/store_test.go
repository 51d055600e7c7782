package event_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kengston/banhBao/internal/event"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		panic(err)
	}
	return loc
}()

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "events.json")
}

func TestNewStore_MissingFile(t *testing.T) {
	t.Parallel()

	s := event.NewStore(storePath(t), testLoc, nil)
	if got := len(s.All()); got != 0 {
		t.Errorf("missing file: got %d events, want 0", got)
	}
}

func TestNewStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := event.NewStore(path, testLoc, nil)
	if got := len(s.All()); got != 0 {
		t.Errorf("corrupt file: got %d events, want 0", got)
	}
}

func TestStore_PutGetRemove(t *testing.T) {
	t.Parallel()

	path := storePath(t)
	s := event.NewStore(path, testLoc, nil)

	due := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)
	ev := event.New(42, due, "Standup", "https://meet.example/abc")
	s.Put(ev)

	got, ok := s.Get(ev.ID)
	if !ok {
		t.Fatalf("Get(%q) not found after Put", ev.ID)
	}
	if got.Title != "Standup" || !got.DueAt.Equal(due) || got.ChatID != 42 || got.Link != "https://meet.example/abc" {
		t.Errorf("Get = %+v, want %+v", got, ev)
	}

	// Persisted immediately: a fresh store sees the event.
	reloaded := event.NewStore(path, testLoc, nil)
	if _, ok := reloaded.Get(ev.ID); !ok {
		t.Errorf("event %q not found after reload", ev.ID)
	}

	s.Remove(ev.ID)
	if _, ok := s.Get(ev.ID); ok {
		t.Errorf("Get(%q) found after Remove", ev.ID)
	}
	s.Remove(ev.ID) // removing an unknown id is a no-op
}

func TestStore_RefusesEmptyTitle(t *testing.T) {
	t.Parallel()

	s := event.NewStore(storePath(t), testLoc, nil)
	ev := event.New(1, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "", "")
	s.Put(ev)

	if _, ok := s.Get(ev.ID); ok {
		t.Error("event with empty title was stored")
	}
}

func TestStore_IDCollision(t *testing.T) {
	t.Parallel()

	s := event.NewStore(storePath(t), testLoc, nil)
	due := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)

	s.Put(event.New(42, due, "First", ""))
	s.Put(event.New(42, due, "Second", ""))

	events := s.ListForChat(42)
	if len(events) != 1 {
		t.Fatalf("same chat and instant: got %d events, want 1", len(events))
	}
	if events[0].Title != "Second" {
		t.Errorf("Title = %q, want %q (later Put wins)", events[0].Title, "Second")
	}
}

func TestStore_ListForChat_Order(t *testing.T) {
	t.Parallel()

	s := event.NewStore(storePath(t), testLoc, nil)
	s.Put(event.New(42, time.Date(2030, 3, 1, 10, 0, 0, 0, testLoc), "Third", ""))
	s.Put(event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "First", ""))
	s.Put(event.New(42, time.Date(2030, 2, 1, 10, 0, 0, 0, testLoc), "Second", ""))
	s.Put(event.New(7, time.Date(2030, 1, 15, 10, 0, 0, 0, testLoc), "Other chat", ""))

	events := s.ListForChat(42)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if events[i].Title != want {
			t.Errorf("events[%d].Title = %q, want %q", i, events[i].Title, want)
		}
	}
}

func TestStore_SaveAfterLoadIsByteIdentical(t *testing.T) {
	t.Parallel()

	path := storePath(t)
	s := event.NewStore(path, testLoc, nil)
	s.Put(event.New(42, time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc), "Standup", "https://meet.example/abc"))
	s.Put(event.New(-100123, time.Date(2031, 6, 15, 8, 30, 0, 0, testLoc), "Review", ""))

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	reloaded := event.NewStore(path, testLoc, nil)
	reloaded.Flush()

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("save after load changed file contents:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestStore_LoadsLegacyDestinationField(t *testing.T) {
	t.Parallel()

	path := storePath(t)
	legacy := `{
  "42:1893466800": {
    "id": "42:1893466800",
    "title": "Standup",
    "due_at": "2030-01-01T10:00:00",
    "user_id": 42,
    "link": "https://meet.example/abc"
  }
}
`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := event.NewStore(path, testLoc, nil)
	ev, ok := s.Get("42:1893466800")
	if !ok {
		t.Fatal("legacy record not loaded")
	}
	if ev.ChatID != 42 {
		t.Errorf("ChatID = %d, want 42 (fallback from user_id)", ev.ChatID)
	}

	// A naive due_at is interpreted in the operating timezone.
	want := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)
	if !ev.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", ev.DueAt, want)
	}
}

func TestID_Deterministic(t *testing.T) {
	t.Parallel()

	due := time.Date(2030, 1, 1, 10, 0, 0, 0, testLoc)
	if got, want := event.ID(42, due), event.ID(42, due); got != want {
		t.Errorf("ID not deterministic: %q vs %q", got, want)
	}
	if event.ID(42, due) == event.ID(43, due) {
		t.Error("ID identical for different chats")
	}
	if event.ID(42, due) == event.ID(42, due.Add(time.Minute)) {
		t.Error("ID identical for different instants")
	}
}
