package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/upload"
	"github.com/charmbracelet/lipgloss"
)

const timeFormat = "15:04"

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderStages(),
		m.theme.Input.Width(m.width - 2).Render(m.input.View()),
		m.renderStatus(),
	}
	if m.config.ShowHelp {
		if m.fullHelp {
			sections = append(sections, m.help.FullHelpView(m.keymap.FullHelp()))
		} else {
			sections = append(sections, m.help.ShortHelpView(m.keymap.ShortHelp()))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.ChatIcon + " Finchat")
	subtitle := m.theme.Subtitle.Render("Asistente de comprobantes")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", subtitle) + "\n"
}

func (m Model) renderMessages(msgs []model.Message) string {
	width := m.width * 3 / 4
	if width < 20 {
		width = 20
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width int) string {
	body := msg.Text
	if msg.Receipts != nil {
		body += "\n" + renderReceiptLine(*msg.Receipts)
	}

	stamp := m.theme.Timestamp.Render(msg.Timestamp.Format(timeFormat))

	if msg.IsUser() {
		bubble := m.theme.UserBubble.MaxWidth(width).Width(min(width, lipgloss.Width(body)+2)).Render(body)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}

	bubble := m.theme.SystemBubble.MaxWidth(width).Width(min(width, lipgloss.Width(body)+2)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

func renderReceiptLine(s model.ReceiptSummary) string {
	return fmt.Sprintf("%s %d comprobante(s) · total %s · deducible %s",
		cli.ReceiptIcon, s.Count, s.TotalAmount.StringFixed(2), s.DeductibleAmount.StringFixed(2))
}

func (m Model) renderStages() string {
	if len(m.stages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.stages))
	for _, st := range m.stages {
		switch st.Status {
		case upload.StatusDone:
			parts = append(parts, m.theme.StageDone.Render(cli.DoneIcon+" "+st.Label))
		case upload.StatusCurrent:
			parts = append(parts, m.theme.StageCurrent.Render(cli.CurrentIcon+" "+st.Label))
		case upload.StatusError:
			parts = append(parts, m.theme.StageError.Render(cli.ErrorIcon+" "+st.Label))
		default:
			parts = append(parts, m.theme.StagePending.Render(cli.PendingIcon+" "+st.Label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderStatus() string {
	switch {
	case m.pending > 0:
		return m.theme.StatusBar.Render(m.spinner.View() + " Procesando...")
	case m.status == "":
		return m.theme.StatusBar.Render(" ")
	case m.statusErr:
		return m.theme.StatusError.Render(m.status)
	default:
		return m.theme.StatusSuccess.Render(m.status)
	}
}
