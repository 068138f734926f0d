package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/finchat/internal/app"
	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/config"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/session"
	"github.com/Veraticus/finchat/internal/testutil"
	"github.com/Veraticus/finchat/internal/upload"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	sess  *session.Session
	mock  *backend.MockClient
	root  *app.Root
	model Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctx := context.Background()
	sess := session.New(testutil.SetupAuthenticatedStore(t, "tok"))
	mock := backend.NewMockClient()
	root := app.NewRoot(sess, mock, chat.Options{})
	t.Cleanup(root.Close)

	_, err := root.Start(ctx)
	require.NoError(t, err)

	m, err := NewModel(ctx, root, WithSize(100, 30))
	require.NoError(t, err)

	return &harness{sess: sess, mock: mock, root: root, model: m}
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// typeAndPress fills the input and presses key, returning the resulting
// command without running it.
func (h *harness) typeAndPress(text string, key tea.KeyType) tea.Cmd {
	h.model.input.SetValue(text)
	return h.update(tea.KeyMsg{Type: key})
}

// settle runs cmd and feeds every resulting message back into the model,
// skipping spinner ticks so the loop terminates.
func (h *harness) settle(cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	for _, msg := range collect(cmd) {
		seen = append(seen, msg)
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		seen = append(seen, collect(h.update(msg))...)
	}
	return seen
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func hasQuit(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestNewModel_RequiresSession(t *testing.T) {
	ctx := context.Background()
	root := app.NewRoot(session.New(testutil.SetupTestStore(t)), backend.NewMockClient(), chat.Options{})
	t.Cleanup(root.Close)

	_, err := NewModel(ctx, root)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestModel_ViewShowsGreeting(t *testing.T) {
	h := newHarness(t)

	view := h.model.View()
	assert.Contains(t, view, "Finchat")
	assert.Contains(t, view, "¡Hola!")
}

func TestModel_SendMessage(t *testing.T) {
	h := newHarness(t)

	cmd := h.typeAndPress("hola", tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, h.model.Busy())
	assert.Empty(t, h.model.input.Value())

	h.settle(cmd)

	assert.False(t, h.model.Busy())
	assert.Equal(t, []string{"hola"}, h.mock.AnswerCalls)
	assert.Equal(t, 3, h.model.conv.Len())
	assert.Contains(t, h.model.viewport.View(), "eco: hola")
}

func TestModel_BlankInputIgnored(t *testing.T) {
	h := newHarness(t)

	cmd := h.typeAndPress("   ", tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, h.model.Busy())
	assert.Equal(t, 1, h.model.conv.Len())
}

func TestModel_RejectsInputWhileBusy(t *testing.T) {
	h := newHarness(t)

	first := h.typeAndPress("uno", tea.KeyEnter)
	require.NotNil(t, first)

	second := h.typeAndPress("dos", tea.KeyEnter)
	assert.Nil(t, second)
	assert.Equal(t, busyStatus, h.model.status)
	assert.Equal(t, "dos", h.model.input.Value())

	h.settle(first)
	assert.Equal(t, []string{"uno"}, h.mock.AnswerCalls)
}

func TestModel_Consult(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   tea.KeyType
		want  string
	}{
		{name: "shortcut", input: "gastos de marzo", key: tea.KeyCtrlK, want: "gastos de marzo"},
		{name: "slash command", input: "/consult total del año", key: tea.KeyEnter, want: "total del año"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			h.settle(h.typeAndPress(tt.input, tt.key))

			assert.Equal(t, []string{tt.want}, h.mock.ConsultCalls)
			assert.Empty(t, h.mock.AnswerCalls)
			assert.Equal(t, 3, h.model.conv.Len())
		})
	}
}

func TestModel_Upload(t *testing.T) {
	h := newHarness(t)

	h.settle(h.typeAndPress("/upload /tmp/boleta.pdf", tea.KeyEnter))

	require.Len(t, h.mock.ProcessReceiptsCalls, 1)
	assert.Equal(t, "boleta.pdf", h.mock.ProcessReceiptsCalls[0][0].DisplayName())
	assert.Equal(t, "1 comprobante procesado.", h.model.status)
	assert.False(t, h.model.statusErr)

	msgs := h.model.conv.Messages()
	last := msgs[len(msgs)-1]
	assert.True(t, strings.HasPrefix(last.Text, app.UploadedPrefix))
	require.NotNil(t, last.Receipts)

	for _, st := range h.model.stages {
		assert.Equal(t, upload.StatusDone, st.Status)
	}
}

func TestModel_UploadFailureMarksStage(t *testing.T) {
	h := newHarness(t)
	h.mock.ProcessReceiptsFn = func(context.Context, []model.PendingFile) (model.UploadResult, error) {
		return model.UploadResult{}, assert.AnError
	}

	h.settle(h.typeAndPress("/upload /tmp/boleta.pdf", tea.KeyEnter))

	assert.Equal(t, upload.FailedMessage, h.model.status)
	assert.True(t, h.model.statusErr)
	require.NotEmpty(t, h.model.stages)
	assert.Equal(t, upload.StatusError, h.model.stages[0].Status)
}

func TestModel_CommandErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status string
	}{
		{name: "upload without files", input: "/upload", status: usageUpload},
		{name: "unknown command", input: "/borrar", status: unknownCommand + "/borrar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			cmd := h.typeAndPress(tt.input, tea.KeyEnter)
			assert.Nil(t, cmd)
			assert.Equal(t, tt.status, h.model.status)
			assert.True(t, h.model.statusErr)
			assert.Equal(t, 0, h.mock.ProcessReceiptsCallCount())
		})
	}
}

func TestModel_Logout(t *testing.T) {
	h := newHarness(t)

	msgs := h.settle(h.typeAndPress("/logout", tea.KeyEnter))

	assert.True(t, hasQuit(msgs))
	assert.True(t, h.model.Outcome().LoggedOut)
	assert.False(t, h.root.Authenticated(context.Background()))
	assert.Empty(t, h.model.View())
}

func TestModel_SessionExpiryQuits(t *testing.T) {
	h := newHarness(t)
	h.mock.AnswerFn = func(ctx context.Context, _ string) (string, error) {
		_ = h.sess.Invalidate(ctx)
		return "", &common.RequestError{Method: "POST", Path: backend.PathConsult, StatusCode: 401}
	}

	msgs := h.settle(h.typeAndPress("hola", tea.KeyEnter))

	assert.True(t, hasQuit(msgs))
	assert.True(t, h.model.Outcome().SessionExpired)
	assert.Equal(t, expiredStatus, h.model.status)
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		run  func(h *harness) tea.Cmd
	}{
		{name: "escape", run: func(h *harness) tea.Cmd { return h.update(tea.KeyMsg{Type: tea.KeyEsc}) }},
		{name: "ctrl+c", run: func(h *harness) tea.Cmd { return h.update(tea.KeyMsg{Type: tea.KeyCtrlC}) }},
		{name: "slash command", run: func(h *harness) tea.Cmd { return h.typeAndPress("/quit", tea.KeyEnter) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			assert.True(t, hasQuit(collect(tt.run(h))))
			assert.False(t, h.model.Outcome().LoggedOut)
			assert.False(t, h.model.Outcome().SessionExpired)
		})
	}
}

func TestModel_WindowResize(t *testing.T) {
	h := newHarness(t)

	h.update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, h.model.viewport.Width)
	assert.Equal(t, 40-8, h.model.viewport.Height)

	h.update(tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, h.model.fullHelp)
	assert.Equal(t, 40-10, h.model.viewport.Height)
}

func TestModel_GreetingFromConfig(t *testing.T) {
	h := newHarness(t)

	msgs := h.model.conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, config.DefaultGreeting, msgs[0].Text)
}
