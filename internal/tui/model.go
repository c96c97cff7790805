package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/preview"
	"github.com/julianstephens/dragx/internal/tui/components/guide"
	"github.com/julianstephens/dragx/internal/tui/components/slotgrid"
)

type SessionState int

const (
	StateBoard SessionState = iota
	StateEditPosition
	StatePrefix
	StateConfirmClear
	StateOpen
	StateGuide
)

// PrefixFormModel backs the prefix form
type PrefixFormModel struct {
	Prefix string
}

// ClearFormModel backs the clear-all confirmation
type ClearFormModel struct {
	Confirm bool
}

// Options configures a new board session
type Options struct {
	Paths  []string
	Prefix string
	Out    string
	Dir    string
}

type Model struct {
	board      *board.Board
	previews   *preview.Registry
	state      SessionState
	keys       KeyMap
	help       help.Model
	grid       slotgrid.Model
	input      textinput.Model
	picker     filepicker.Model
	guide      guide.Model
	spinner    spinner.Model
	form       *huh.Form
	prefixForm *PrefixFormModel
	clearForm  *ClearFormModel

	paths  []string
	prefix string
	out    string

	picked       string // slot picked up for a swap
	editing      string // slot whose number is being typed
	pending      int    // single-slot reads in flight
	exporting    bool
	cancelExport context.CancelFunc

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

func NewModel(b *board.Board, previews *preview.Registry, opts Options) Model {
	out := opts.Out
	if out == "" {
		out = constants.DefaultArchiveName
	}

	input := textinput.New()
	input.Placeholder = "12 or 12_3"
	input.CharLimit = 16
	input.Prompt = "number: "

	picker := filepicker.New()
	picker.DirAllowed = true
	picker.FileAllowed = true
	picker.CurrentDirectory = opts.Dir
	if picker.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			picker.CurrentDirectory = wd
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		board:    b,
		previews: previews,
		state:    StateBoard,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		grid:     slotgrid.New(constants.SlotsPerPage),
		input:    input,
		picker:   picker,
		guide:    guide.New(80, 20),
		spinner:  sp,
		paths:    opts.Paths,
		prefix:   opts.Prefix,
		out:      out,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	if len(m.paths) == 0 {
		return nil
	}
	return loadFilesCmd(context.Background(), m.paths)
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// Board exposes the board for inspection
func (m Model) Board() *board.Board {
	return m.board
}

func (m Model) Prefix() string {
	return m.prefix
}

func (m Model) State() SessionState {
	return m.state
}

func (m Model) Status() string {
	return m.status
}

// refresh pushes the current board into the grid
func (m *Model) refresh() {
	m.grid.SetSlots(m.board.Slots())
	m.grid.SetPicked(m.picked)
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}
