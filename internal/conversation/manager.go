// Package conversation implements the per-chat dialogue state machine that
// collects event data across several free-text turns. Three flows exist
// (create, edit, delete), each a linear chain of steps that validates every
// reply and re-prompts on bad input. At most one flow is active per chat.
package conversation

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/event"
	"github.com/Kengston/banhBao/internal/timeutil"
)

// Step identifies the state a flow is waiting in.
type Step int

const (
	StepCreateDateTime Step = iota
	StepCreateTitle
	StepCreateLink
	StepDeleteSelect
	StepEditSelect
	StepEditField
	StepEditValue
)

// Field names the event attributes the edit flow can change.
type Field string

const (
	FieldDateTime Field = "datetime"
	FieldTitle    Field = "title"
	FieldLink     Field = "link"
)

// Planner is the scheduling side the terminal steps talk to.
type Planner interface {
	Schedule(ev event.Event)
	Cancel(eventID string)
}

// draft is the ephemeral state of one active flow.
type draft struct {
	step      Step
	dueAt     time.Time
	title     string
	eventID   string
	field     Field
	promptIDs []int
}

// Result is the outcome of one conversation turn.
type Result struct {
	// Reply is the text to send back to the chat.
	Reply string
	// Done reports whether the flow ended this turn.
	Done bool
	// CleanupIDs lists prompt message ids the transport layer may delete
	// once the flow is over. Empty unless Done.
	CleanupIDs []int
}

// Manager owns the draft table and serializes all conversation turns. Store
// mutation and scheduling for a turn happen under a single lock acquisition,
// so concurrent turns never interleave a read-modify-write on one event.
type Manager struct {
	logger  *slog.Logger
	store   *event.Store
	planner Planner
	loc     *time.Location
	msgs    config.Messages
	clock   clockwork.Clock

	mu     sync.Mutex
	drafts map[int64]*draft
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the manager's clock, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager creates a conversation manager.
func NewManager(logger *slog.Logger, store *event.Store, planner Planner, loc *time.Location, msgs config.Messages, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Manager{
		logger:  logger.With("component", "conversation"),
		store:   store,
		planner: planner,
		loc:     loc,
		msgs:    msgs,
		clock:   clockwork.NewRealClock(),
		drafts:  make(map[int64]*draft),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartCreate begins the create flow, discarding any prior draft.
func (m *Manager) StartCreate(chatID int64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.discardLocked(chatID)
	m.drafts[chatID] = &draft{step: StepCreateDateTime}
	return Result{Reply: m.msgs.AskDateTime}
}

// StartDelete begins the delete flow. With no events to delete the flow ends
// immediately.
func (m *Manager) StartDelete(chatID int64) Result {
	return m.startSelection(chatID, StepDeleteSelect)
}

// StartEdit begins the edit flow. With no events to edit the flow ends
// immediately.
func (m *Manager) StartEdit(chatID int64) Result {
	return m.startSelection(chatID, StepEditSelect)
}

func (m *Manager) startSelection(chatID int64, step Step) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.discardLocked(chatID)

	events := m.store.ListForChat(chatID)
	if len(events) == 0 {
		return Result{Reply: m.msgs.NoEvents, Done: true}
	}

	m.drafts[chatID] = &draft{step: step}
	return Result{Reply: fmt.Sprintf(m.msgs.AskSelection, m.RenderList(events))}
}

// CancelFlow handles an explicit cancel command.
func (m *Manager) CancelFlow(chatID int64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[chatID]
	if !ok {
		return Result{Reply: m.msgs.NothingToCancel, Done: true}
	}
	delete(m.drafts, chatID)
	return Result{Reply: m.msgs.FlowCancelled, Done: true, CleanupIDs: d.promptIDs}
}

// Abandon silently discards any active draft, returning its prompt ids.
// Used when a command interrupts a flow mid-progress: the draft goes away
// without a dedicated warning and the command dispatches normally.
func (m *Manager) Abandon(chatID int64) ([]int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[chatID]
	if !ok {
		return nil, false
	}
	delete(m.drafts, chatID)
	m.logger.Debug("Discarded active draft", "chat_id", chatID, "step", d.step)
	return d.promptIDs, true
}

// Active reports whether the chat has a flow in progress.
func (m *Manager) Active(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drafts[chatID]
	return ok
}

// ActiveStep reports the step the chat's flow is waiting in.
func (m *Manager) ActiveStep(chatID int64) (Step, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[chatID]
	if !ok {
		return 0, false
	}
	return d.step, true
}

// TrackPrompt records a prompt message id for post-flow cleanup.
func (m *Manager) TrackPrompt(chatID int64, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.drafts[chatID]; ok {
		d.promptIDs = append(d.promptIDs, messageID)
	}
}

// HandleText advances the chat's flow with one user reply. The second return
// value is false when no flow is active. Text starting with the command
// marker is an implicit cancel.
func (m *Manager) HandleText(chatID int64, text string) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[chatID]
	if !ok {
		return Result{}, false
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		delete(m.drafts, chatID)
		return Result{Reply: m.msgs.FlowCancelled, Done: true, CleanupIDs: d.promptIDs}, true
	}

	switch d.step {
	case StepCreateDateTime:
		return m.stepCreateDateTime(d, trimmed), true
	case StepCreateTitle:
		return m.stepCreateTitle(d, trimmed), true
	case StepCreateLink:
		return m.stepCreateLink(chatID, d, trimmed), true
	case StepDeleteSelect:
		return m.stepDeleteSelect(chatID, d, trimmed), true
	case StepEditSelect:
		return m.stepEditSelect(chatID, d, trimmed), true
	case StepEditField:
		return m.stepEditField(d, trimmed), true
	case StepEditValue:
		return m.stepEditValue(chatID, d, trimmed), true
	default:
		m.logger.Error("Draft in unknown step, discarding", "chat_id", chatID, "step", d.step)
		delete(m.drafts, chatID)
		return Result{Reply: m.msgs.FlowCancelled, Done: true, CleanupIDs: d.promptIDs}, true
	}
}

func (m *Manager) stepCreateDateTime(d *draft, text string) Result {
	dueAt, err := timeutil.ParseLocalDateTime(text, m.loc)
	if err != nil {
		return Result{Reply: m.msgs.InvalidDateTime}
	}
	// "Now" at validation time, not at flow-start time.
	if !dueAt.After(m.clock.Now()) {
		return Result{Reply: m.msgs.DateTimeInPast}
	}

	d.dueAt = dueAt
	d.step = StepCreateTitle
	return Result{Reply: m.msgs.AskTitle}
}

func (m *Manager) stepCreateTitle(d *draft, text string) Result {
	if text == "" {
		return Result{Reply: m.msgs.EmptyTitle}
	}
	d.title = text
	d.step = StepCreateLink
	return Result{Reply: m.msgs.AskLink}
}

func (m *Manager) stepCreateLink(chatID int64, d *draft, text string) Result {
	if !timeutil.IsValidLink(text) {
		return Result{Reply: m.msgs.InvalidLink}
	}

	ev := event.New(chatID, d.dueAt, d.title, text)
	m.store.Put(ev)
	m.planner.Schedule(ev)
	delete(m.drafts, chatID)

	m.logger.Info("Created event", "chat_id", chatID, "event_id", ev.ID, "due_at", ev.DueAt)
	reply := fmt.Sprintf(m.msgs.EventCreated, ev.Title, timeutil.FormatLocal(ev.DueAt, m.loc), ev.Link)
	return Result{Reply: reply, Done: true, CleanupIDs: d.promptIDs}
}

func (m *Manager) stepDeleteSelect(chatID int64, d *draft, text string) Result {
	ev, ok := m.selectEvent(chatID, text)
	if !ok {
		return Result{Reply: m.msgs.SelectionNoMatch}
	}

	m.planner.Cancel(ev.ID)
	m.store.Remove(ev.ID)
	delete(m.drafts, chatID)

	m.logger.Info("Deleted event", "chat_id", chatID, "event_id", ev.ID)
	return Result{Reply: fmt.Sprintf(m.msgs.EventDeleted, ev.Title), Done: true, CleanupIDs: d.promptIDs}
}

func (m *Manager) stepEditSelect(chatID int64, d *draft, text string) Result {
	ev, ok := m.selectEvent(chatID, text)
	if !ok {
		return Result{Reply: m.msgs.SelectionNoMatch}
	}
	d.eventID = ev.ID
	d.step = StepEditField
	return Result{Reply: m.msgs.AskField}
}

func (m *Manager) stepEditField(d *draft, text string) Result {
	switch Field(strings.ToLower(text)) {
	case FieldDateTime:
		d.field = FieldDateTime
	case FieldTitle:
		d.field = FieldTitle
	case FieldLink:
		d.field = FieldLink
	default:
		return Result{Reply: m.msgs.InvalidField}
	}
	d.step = StepEditValue
	return Result{Reply: fmt.Sprintf(m.msgs.AskNewValue, string(d.field))}
}

func (m *Manager) stepEditValue(chatID int64, d *draft, text string) Result {
	ev, ok := m.store.Get(d.eventID)
	if !ok {
		// Deleted while the flow was in progress.
		delete(m.drafts, chatID)
		return Result{Reply: m.msgs.EventNotFound, Done: true, CleanupIDs: d.promptIDs}
	}

	switch d.field {
	case FieldDateTime:
		dueAt, err := timeutil.ParseLocalDateTime(text, m.loc)
		if err != nil {
			return Result{Reply: m.msgs.InvalidDateTime}
		}
		if !dueAt.After(m.clock.Now()) {
			return Result{Reply: m.msgs.DateTimeInPast}
		}
		ev.DueAt = dueAt
		m.store.Put(ev)
		// The due instant moved, so the pending reminder must move with it.
		m.planner.Cancel(ev.ID)
		m.planner.Schedule(ev)

	case FieldTitle:
		if text == "" {
			return Result{Reply: m.msgs.EmptyTitle}
		}
		ev.Title = text
		m.store.Put(ev)

	case FieldLink:
		if !timeutil.IsValidLink(text) {
			return Result{Reply: m.msgs.InvalidLink}
		}
		ev.Link = text
		m.store.Put(ev)
	}

	delete(m.drafts, chatID)
	m.logger.Info("Updated event", "chat_id", chatID, "event_id", ev.ID, "field", d.field)
	reply := fmt.Sprintf(m.msgs.EventUpdated, ev.Title, timeutil.FormatLocal(ev.DueAt, m.loc))
	return Result{Reply: reply, Done: true, CleanupIDs: d.promptIDs}
}

// selectEvent resolves a selection reply against the chat's events ordered by
// due instant. A 1-based ordinal is tried first, then a case-insensitive
// substring match against titles; an ambiguous substring resolves to the
// first candidate in the ordered listing.
func (m *Manager) selectEvent(chatID int64, text string) (event.Event, bool) {
	events := m.store.ListForChat(chatID)
	if len(events) == 0 {
		return event.Event{}, false
	}

	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(events) {
			return events[n-1], true
		}
		return event.Event{}, false
	}

	needle := strings.ToLower(text)
	if needle == "" {
		return event.Event{}, false
	}
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), needle) {
			return ev, true
		}
	}
	return event.Event{}, false
}

// RenderList renders events as a numbered listing in due order. The numbers
// are the ordinals the selection steps accept.
func (m *Manager) RenderList(events []event.Event) string {
	var b strings.Builder
	for i, ev := range events {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, timeutil.FormatLocal(ev.DueAt, m.loc), ev.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Manager) discardLocked(chatID int64) {
	if d, ok := m.drafts[chatID]; ok {
		m.logger.Debug("Discarding prior draft for new flow", "chat_id", chatID, "step", d.step)
		delete(m.drafts, chatID)
	}
}
