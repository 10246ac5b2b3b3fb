package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a bot handler with its registration metadata.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot handlers.
// The "/search" prefix registration covers /search, /searchfts5 and
// /searchlike in one handler; the variant is resolved from the message text.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/search"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/search",
		Handler:     NewSearchHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["/viewarchive"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/viewarchive",
		Handler:     NewViewArchiveHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["/random"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/random",
		Handler:     NewRandomHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["/whosaid"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/whosaid",
		Handler:     NewWhoSaidHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["/debug"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/debug",
		Handler:     NewDebugHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	handlers["callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "",
		Handler:     NewCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}
