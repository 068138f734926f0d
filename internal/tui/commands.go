package tui

import (
	"context"

	"github.com/Veraticus/finchat/internal/app"
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

func sendCmd(ctx context.Context, conv *chat.Conversation, text string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{turn: conv.SendMessage(ctx, text)}
	}
}

func consultCmd(ctx context.Context, conv *chat.Conversation, text string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{turn: conv.Consult(ctx, text), consult: true}
	}
}

func uploadCmd(ctx context.Context, root *app.Root, paths []string) tea.Cmd {
	files := make([]model.PendingFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, model.NewPendingFile(p))
	}

	return func() tea.Msg {
		receipts, err := root.UploadFromChat(ctx, files)
		return uploadDoneMsg{receipts: receipts, err: err}
	}
}

func logoutCmd(ctx context.Context, root *app.Root) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: root.Auth().Logout(ctx)}
	}
}
