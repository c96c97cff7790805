package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StatePrefix, StateConfirmClear:
		content = docStyle.Render(m.form.View())
	case StateOpen:
		content = docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			"Pick a folder to fill empty slots, or a photo for the selected slot (esc to cancel)",
			"",
			m.picker.View(),
		))
	case StateGuide:
		content = docStyle.Render(m.guide.View())
	default:
		content = m.viewBoard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	parts := []string{
		titleStyle.Render("dragx"),
		infoStyle.Render(fmt.Sprintf("%d/%d filled", m.board.CountFilled(), m.board.Len())),
	}
	if m.prefix != "" {
		parts = append(parts, prefixStyle.Render("prefix: "+m.prefix))
	}
	if m.pending > 0 {
		parts = append(parts, infoStyle.Render(fmt.Sprintf("reading %d", m.pending)))
	}
	if m.exporting {
		parts = append(parts, m.spinner.View()+" exporting")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewBoard() string {
	sections := []string{m.grid.View(), m.viewSelection()}
	if m.state == StateEditPosition {
		sections = append(sections, m.input.View())
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// viewSelection describes the slot under the cursor
func (m Model) viewSelection() string {
	s, ok := m.grid.Selected()
	if !ok {
		return ""
	}
	if !s.Filled() {
		return infoStyle.Render(fmt.Sprintf("%s · %s · empty", s.ID, s.Label()))
	}

	details := []string{s.ID, s.Label(), s.Content.File.Name, humanize.Bytes(uint64(s.Content.File.Size()))}
	if dims := s.Content.Preview.Dimensions(); dims != "" {
		details = append(details, dims)
	}
	if format := s.Content.Preview.Format; format != "" {
		details = append(details, format)
	}
	return infoStyle.Render(strings.Join(details, " · "))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return warningStyle.Render(m.status)
	}
	if m.picked != "" {
		return dangerStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
