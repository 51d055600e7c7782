package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultTimezone = "Asia/Ho_Chi_Minh"

	DefaultPollTimeout        = 10 * time.Second
	DefaultDropPendingUpdates = true

	DefaultListenAddr    = ":8080"
	DefaultWebhookSecret = "change-me"

	DefaultStoragePath = "events.json"
)

// DefaultMessages is the default user-visible message catalog.
var DefaultMessages = Messages{
	Welcome: "👋 Hi! I keep track of your events and remind you 10 minutes before each one.\n" +
		"Use /create to add an event, /list to see what's coming up, /help for everything else.",
	Help: "Commands:\n" +
		"/create — add an event (date, title, link)\n" +
		"/edit — change an existing event\n" +
		"/delete — remove an event\n" +
		"/list — show upcoming events\n" +
		"/time — current time\n" +
		"/cancel — abort the current dialogue",

	AskDateTime:     "📅 When is the event? Send date and time like 2025-10-19 21:30.",
	InvalidDateTime: "❌ I couldn't read that date. Use a format like 2025-10-19 21:30 and try again.",
	DateTimeInPast:  "❌ That moment is already in the past. Send a future date and time.",
	AskTitle:        "✏️ What's the event called?",
	EmptyTitle:      "❌ The title can't be empty. Send a short name for the event.",
	AskLink:         "🔗 Send a link for the event (https://...).",
	InvalidLink:     "❌ That doesn't look like a valid http(s) link. Try again.",

	EventCreated: "✅ Saved: %s at %s\n%s\nI'll remind you 10 minutes before.",
	EventUpdated: "✅ Updated: %s at %s",
	EventDeleted: "🗑 Deleted: %s",

	AskSelection:     "Which event? Reply with its number or part of its title:\n\n%s",
	SelectionNoMatch: "❌ I couldn't match that to an event. Reply with a number or part of a title.",
	AskField:         "What do you want to change: datetime, title or link?",
	InvalidField:     "❌ Please reply with one of: datetime, title, link.",
	AskNewValue:      "Send the new %s.",

	NoEvents:      "You have no upcoming events.",
	EventNotFound: "❌ That event no longer exists.",
	ListHeader:    "📋 Upcoming events:\n\n",

	FlowCancelled:   "Okay, cancelled.",
	NothingToCancel: "Nothing to cancel.",

	Reminder:    "🔔 In 10 minutes: %s at %s",
	CurrentTime: "🕒 Current time: %s (GMT%+d)",
}
