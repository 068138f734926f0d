package tui

import (
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/model"
)

// turnDoneMsg carries the outcome of a chat or consultation turn.
type turnDoneMsg struct {
	turn    chat.Turn
	consult bool
}

// uploadDoneMsg carries the outcome of an upload started from the chat.
type uploadDoneMsg struct {
	err      error
	receipts []model.ProcessedReceipt
}

// loggedOutMsg reports the end of an explicit logout.
type loggedOutMsg struct {
	err error
}

// Slash commands typed into the input.
const (
	commandConsult = "/consult"
	commandUpload  = "/upload"
	commandLogout  = "/logout"
	commandQuit    = "/quit"
)
