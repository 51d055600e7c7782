// Package event provides the event model and the file-backed event store.
package event

import (
	"fmt"
	"time"
)

// Event is a user-registered, time-stamped event. The ID is derived from the
// destination chat and the due instant at creation time, so re-creating an
// event at the same instant for the same chat collides on purpose.
type Event struct {
	ID     string
	Title  string
	DueAt  time.Time
	ChatID int64
	Link   string
}

// ID derives the deterministic event identifier for a chat and due instant.
func ID(chatID int64, dueAt time.Time) string {
	return fmt.Sprintf("%d:%d", chatID, dueAt.Unix())
}

// New builds an Event with its derived identifier.
func New(chatID int64, dueAt time.Time, title, link string) Event {
	return Event{
		ID:     ID(chatID, dueAt),
		Title:  title,
		DueAt:  dueAt,
		ChatID: chatID,
		Link:   link,
	}
}
