package guide

import (
	_ "embed"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

//go:embed guide.md
var source string

// Cache renderers by width; building one parses the whole style sheet
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// Model shows the user guide in a scrollable viewport
type Model struct {
	viewport viewport.Model
	width    int
	height   int
}

func New(width, height int) Model {
	m := Model{viewport: viewport.New(width, height)}
	m.SetSize(width, height)
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// Render formats the guide for the current width. The raw markdown is shown
// if it cannot be rendered.
func (m *Model) Render() {
	content := source
	if m.width > 4 {
		if r, err := getRenderer(m.width - 2); err == nil {
			if out, err := r.Render(source); err == nil {
				content = out
			}
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// Source returns the guide markdown
func Source() string {
	return source
}
