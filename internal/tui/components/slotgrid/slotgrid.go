package slotgrid

import (
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dragx/internal/models"
)

const (
	cellWidth  = 18
	labelWidth = 6
)

var (
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(cellWidth)

	filledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(cellWidth)

	overrideStyle = filledStyle.
			Foreground(lipgloss.Color("86"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true).
			Width(cellWidth)

	pickedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Width(cellWidth)
)

// Model renders the board as a paged grid and tracks the cursor. It holds a
// copy of the slots; the owner pushes a fresh copy after every mutation.
type Model struct {
	slots     []models.Slot
	paginator paginator.Model
	cursor    int
	picked    string
	width     int
}

func New(perPage int) Model {
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = perPage
	p.ActiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("•")
	p.InactiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("•")
	return Model{paginator: p, width: 80}
}

// SetSlots replaces the rendered slots, keeping the cursor on the same board
// index when it still exists.
func (m *Model) SetSlots(slots []models.Slot) {
	m.slots = slots
	m.paginator.SetTotalPages(len(slots))
	if m.cursor >= len(slots) {
		m.cursor = max(0, len(slots)-1)
	}
	m.syncPage()
}

func (m *Model) SetWidth(w int) {
	if w > 0 {
		m.width = w
	}
}

// SetPicked marks the slot that is currently picked up for a swap
func (m *Model) SetPicked(id string) {
	m.picked = id
}

// Cursor returns the board index under the cursor
func (m Model) Cursor() int {
	return m.cursor
}

func (m Model) Selected() (models.Slot, bool) {
	if m.cursor < 0 || m.cursor >= len(m.slots) {
		return models.Slot{}, false
	}
	return m.slots[m.cursor], true
}

func (m Model) Page() int {
	return m.paginator.Page
}

func (m Model) Pages() int {
	return m.paginator.TotalPages
}

func (m Model) Columns() int {
	return max(1, m.width/cellWidth)
}

// Move shifts the cursor by dx cells and dy rows, staying on the current page
func (m *Model) Move(dx, dy int) {
	if len(m.slots) == 0 {
		return
	}
	start, end := m.paginator.GetSliceBounds(len(m.slots))
	next := m.cursor + dx + dy*m.Columns()
	m.cursor = max(start, min(next, end-1))
}

// NextPage keeps the cursor's offset within the page where possible
func (m *Model) NextPage() {
	if m.paginator.OnLastPage() {
		return
	}
	m.jump(m.paginator.Page + 1)
}

func (m *Model) PrevPage() {
	if m.paginator.OnFirstPage() {
		return
	}
	m.jump(m.paginator.Page - 1)
}

func (m *Model) jump(page int) {
	offset := m.cursor - m.paginator.Page*m.paginator.PerPage
	m.paginator.Page = page
	start, end := m.paginator.GetSliceBounds(len(m.slots))
	m.cursor = min(start+offset, end-1)
}

func (m *Model) syncPage() {
	if m.paginator.PerPage > 0 {
		m.paginator.Page = m.cursor / m.paginator.PerPage
	}
}

func (m Model) View() string {
	if len(m.slots) == 0 {
		return "No slots."
	}

	start, end := m.paginator.GetSliceBounds(len(m.slots))
	cols := m.Columns()

	var rows []string
	var row []string
	for i := start; i < end; i++ {
		row = append(row, m.renderCell(i))
		if len(row) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(rows, "\n"),
		"",
		m.paginator.View(),
	)
}

func (m Model) renderCell(i int) string {
	s := m.slots[i]

	marker := " "
	if s.ID == m.picked {
		marker = "*"
	}
	label := s.Label()
	name := "·"
	if s.Filled() {
		name = truncate(s.Content.File.Name, cellWidth-labelWidth-3)
	}
	text := marker + padRight(label, labelWidth) + " " + name

	switch {
	case i == m.cursor:
		return cursorStyle.Render(text)
	case s.ID == m.picked:
		return pickedStyle.Render(text)
	case !s.Filled():
		return emptyStyle.Render(text)
	case s.HasOverride() || s.BisNumber != 0:
		return overrideStyle.Render(text)
	default:
		return filledStyle.Render(text)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
