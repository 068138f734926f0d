// Package tui is the interactive chat screen: message history, an input
// line with slash commands, and upload stage progress.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finchat/internal/app"
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/tui/themes"
	"github.com/Veraticus/finchat/internal/upload"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status texts.
const (
	busyStatus      = "Espera a que termine la respuesta anterior..."
	expiredStatus   = "Tu sesión expiró. Vuelve a iniciar sesión con finchat login."
	usageUpload     = "Uso: /upload <archivo> [archivo...]"
	unknownCommand  = "Comando desconocido: "
	placeholderText = "Escribe un mensaje..."
)

// Outcome reports how the chat screen ended.
type Outcome struct {
	SessionExpired bool
	LoggedOut      bool
}

// Model holds the chat screen state.
type Model struct {
	ctx        context.Context
	root       *app.Root
	conv       *chat.Conversation
	theme      themes.Theme
	status     string
	stages     []upload.Stage
	help       help.Model
	keymap     KeyMap
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	config     Config
	width      int
	height     int
	pending    int
	statusErr  bool
	expired    bool
	loggedOut  bool
	quitting   bool
	fullHelp   bool
	renderedAt int
}

// NewModel creates the chat model. It fails with common.ErrNotAuthenticated
// when root has no session.
func NewModel(ctx context.Context, root *app.Root, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	conv, err := root.Conversation(ctx)
	if err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.Placeholder = placeholderText
	input.CharLimit = 1000
	input.Prompt = "› "
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:      ctx,
		root:     root,
		conv:     conv,
		theme:    cfg.Theme,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  s,
		viewport: viewport.New(cfg.Width, cfg.Height),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.resize()
	m.refresh()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Outcome reports how the screen ended.
func (m Model) Outcome() Outcome {
	return Outcome{SessionExpired: m.expired, LoggedOut: m.loggedOut}
}

// Busy reports whether a turn or upload started here is still running.
func (m Model) Busy() bool {
	return m.pending > 0
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.fullHelp = !m.fullHelp
			m.resize()
			return m, nil
		case key.Matches(msg, m.keymap.ScrollUp):
			m.viewport.HalfViewUp()
			return m, nil
		case key.Matches(msg, m.keymap.ScrollDown):
			m.viewport.HalfViewDown()
			return m, nil
		case key.Matches(msg, m.keymap.Consult):
			cmd := m.submit(true)
			return m, cmd
		case key.Matches(msg, m.keymap.Send):
			cmd := m.submit(false)
			return m, cmd
		}

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case turnDoneMsg:
		m.pending--
		m.setStatus("", false)
		if msg.turn.Err != nil && errors.Is(msg.turn.Err, common.ErrSessionExpired) {
			m.setStatus(expiredStatus, true)
		}
		m.refresh()
		cmd := m.checkSession()
		return m, cmd

	case uploadDoneMsg:
		m.pending--
		m.stages = m.uploaderStages()
		var validationErr *common.ValidationError
		switch {
		case errors.As(msg.err, &validationErr):
			m.setStatus(validationErr.Message, true)
		case msg.err != nil:
			m.setStatus(upload.FailedMessage, true)
		default:
			m.setStatus(uploadedStatus(len(msg.receipts)), false)
		}
		m.refresh()
		cmd := m.checkSession()
		return m, cmd

	case loggedOutMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.loggedOut = true
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit dispatches the input line. consult forces a consultation for
// plain text.
func (m *Model) submit(consult bool) tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	if m.pending > 0 || m.root.Busy() {
		m.setStatus(busyStatus, true)
		return nil
	}

	m.input.Reset()
	m.setStatus("", false)

	if !strings.HasPrefix(text, "/") {
		if consult {
			return m.start(consultCmd(m.ctx, m.conv, text))
		}
		return m.start(sendCmd(m.ctx, m.conv, text))
	}

	command, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch command {
	case commandConsult:
		if args == "" {
			return nil
		}
		return m.start(consultCmd(m.ctx, m.conv, args))
	case commandUpload:
		paths := strings.Fields(args)
		if len(paths) == 0 {
			m.setStatus(usageUpload, true)
			return nil
		}
		m.stages = upload.NewPipeline().Stages()
		m.stages[0].Status = upload.StatusCurrent
		return m.start(uploadCmd(m.ctx, m.root, paths))
	case commandLogout:
		return logoutCmd(m.ctx, m.root)
	case commandQuit:
		m.quitting = true
		return tea.Quit
	default:
		m.setStatus(unknownCommand+command, true)
		return nil
	}
}

func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.pending++
	m.refresh()
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) checkSession() tea.Cmd {
	if m.root.Authenticated(m.ctx) {
		return nil
	}
	m.expired = true
	m.quitting = true
	m.setStatus(expiredStatus, true)
	return tea.Quit
}

func (m *Model) uploaderStages() []upload.Stage {
	up, err := m.root.Uploader(m.ctx)
	if err != nil {
		return nil
	}
	return up.State().Stages
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// resize lays out the viewport between the header and the input box.
func (m *Model) resize() {
	helpHeight := 1
	if m.fullHelp {
		helpHeight = 3
	}
	// header 2, input box 3, status 1, stages 1
	vpHeight := m.height - 7 - helpHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - 6
	m.help.Width = m.width
}

// refresh re-renders the history into the viewport and keeps it scrolled
// to the bottom when new messages arrived.
func (m *Model) refresh() {
	msgs := m.conv.Messages()
	m.viewport.SetContent(m.renderMessages(msgs))
	if len(msgs) != m.renderedAt {
		m.viewport.GotoBottom()
		m.renderedAt = len(msgs)
	}
}

func uploadedStatus(n int) string {
	switch n {
	case 0:
		return "Archivos enviados, sin comprobantes procesados."
	case 1:
		return "1 comprobante procesado."
	default:
		return fmt.Sprintf("%d comprobantes procesados.", n)
	}
}
