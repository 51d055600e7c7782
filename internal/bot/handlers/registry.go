package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware. It
// encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands. Flow-start commands discard a prior draft themselves; the
// remaining commands get the FlowReset middleware so a command mid-flow acts
// as an implicit cancel followed by normal dispatch.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	flowReset := []tgbot.Middleware{FlowReset(deps)}

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  flowReset,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  flowReset,
	}
	handlers["/time"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "time",
		Handler:     NewTimeHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  flowReset,
	}
	handlers["/list"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "list",
		Handler:     NewListHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  flowReset,
	}

	handlers["/create"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "create",
		Handler:     NewCreateHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/edit"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "edit",
		Handler:     NewEditHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/delete"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "delete",
		Handler:     NewDeleteHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/cancel"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "cancel",
		Handler:     NewCancelHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	return handlers
}
