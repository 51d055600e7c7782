package event

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// record is the persisted representation of a single event. UserID is a
// legacy name for the destination field kept for files written by older
// versions; it is read, never written.
type record struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	DueAt  string `json:"due_at"`
	ChatID *int64 `json:"chat_id,omitempty"`
	UserID *int64 `json:"user_id,omitempty"`
	Link   string `json:"link,omitempty"`
}

// legacyDueAtLayout matches due instants written without an offset by older
// versions; they are interpreted in the operating timezone.
const legacyDueAtLayout = "2006-01-02T15:04:05"

// Store owns the event collection and its persisted JSON file. Every mutation
// saves the full collection; persistence failures are logged and the store
// continues with its in-memory state. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	loc    *time.Location
	logger *slog.Logger
	events map[string]Event
}

// NewStore creates a Store persisted at path and loads any existing events.
// A missing file yields an empty store; an unreadable or corrupt file is
// logged and treated as empty rather than blocking startup.
func NewStore(path string, loc *time.Location, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		path:   path,
		loc:    loc,
		logger: logger.With("component", "event_store"),
		events: make(map[string]Event),
	}
	s.load()
	return s
}

// load reads the persisted file into memory.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No event file found, starting empty", "path", s.path)
			return
		}
		s.logger.Error("Failed to read event file, starting empty", "path", s.path, "error", err)
		return
	}

	var records map[string]record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("Event file is corrupt, starting empty", "path", s.path, "error", err)
		return
	}

	for id, rec := range records {
		ev, err := rec.toEvent(s.loc)
		if err != nil {
			s.logger.Warn("Skipping unreadable event record", "id", id, "error", err)
			continue
		}
		if ev.ID == "" {
			ev.ID = id
		}
		s.events[ev.ID] = ev
	}
	s.logger.Info("Loaded events", "count", len(s.events), "path", s.path)
}

// toEvent converts a persisted record, resolving the legacy destination field
// name (chat_id falls back to user_id).
func (r record) toEvent(loc *time.Location) (Event, error) {
	dueAt, err := time.Parse(time.RFC3339, r.DueAt)
	if err != nil {
		dueAt, err = time.ParseInLocation(legacyDueAtLayout, r.DueAt, loc)
		if err != nil {
			return Event{}, err
		}
	}

	var chatID int64
	switch {
	case r.ChatID != nil:
		chatID = *r.ChatID
	case r.UserID != nil:
		chatID = *r.UserID
	}

	return Event{
		ID:     r.ID,
		Title:  r.Title,
		DueAt:  dueAt,
		ChatID: chatID,
		Link:   r.Link,
	}, nil
}

// save writes the full collection to disk, new-file-then-rename so a crash
// mid-write cannot corrupt the previous good copy. Caller must hold s.mu.
func (s *Store) save() {
	records := make(map[string]record, len(s.events))
	for id, ev := range s.events {
		chatID := ev.ChatID
		records[id] = record{
			ID:     ev.ID,
			Title:  ev.Title,
			DueAt:  ev.DueAt.In(s.loc).Format(time.RFC3339),
			ChatID: &chatID,
			Link:   ev.Link,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error("Failed to serialize events", "error", err)
		return
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("Failed to write event file", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("Failed to replace event file", "path", s.path, "error", err)
		return
	}
	s.logger.Debug("Saved events", "count", len(records), "path", filepath.Base(s.path))
}

// Put inserts or replaces an event and saves. Events without a title are
// never persisted.
func (s *Store) Put(ev Event) {
	if ev.Title == "" {
		s.logger.Warn("Refusing to store event with empty title", "id", ev.ID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
	s.save()
}

// Remove deletes an event by id and saves. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return
	}
	delete(s.events, id)
	s.save()
}

// Get looks up an event by id.
func (s *Store) Get(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	return ev, ok
}

// ListForChat returns the chat's events ordered by due instant ascending,
// with the id as tiebreak so the ordering is stable.
func (s *Store) ListForChat(chatID int64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for _, ev := range s.events {
		if ev.ChatID == chatID {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].DueAt.Equal(events[j].DueAt) {
			return events[i].DueAt.Before(events[j].DueAt)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

// All returns every stored event in no particular order.
func (s *Store) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	return events
}

// Flush saves the current in-memory state. Used on startup to rewrite files
// loaded from a legacy schema in the current format.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save()
}
