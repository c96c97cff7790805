package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/constants"
	apperrors "github.com/julianstephens/dragx/internal/errors"
	"github.com/julianstephens/dragx/internal/logger"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetWidth(msg.Width - 4)
		m.guide.SetSize(msg.Width-4, max(1, msg.Height-4))
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case filesLoadedMsg:
		return m.handleFilesLoaded(msg), nil

	case slotFileLoadedMsg:
		return m.handleSlotFileLoaded(msg), nil

	case exportDoneMsg:
		return m.handleExportDone(msg), nil

	case spinner.TickMsg:
		if !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case StateEditPosition:
		return m.updateEditPosition(msg)
	case StatePrefix:
		return m.updatePrefixForm(msg)
	case StateConfirmClear:
		return m.updateClearForm(msg)
	case StateOpen:
		return m.updatePicker(msg)
	case StateGuide:
		return m.updateGuide(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleBoardKeys(msg)
	}
	return m, nil
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.grid.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.grid.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.grid.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.grid.Move(1, 0)
	case key.Matches(msg, m.keys.PrevPage):
		m.grid.PrevPage()
	case key.Matches(msg, m.keys.NextPage):
		m.grid.NextPage()
	case key.Matches(msg, m.keys.Pick):
		m.pickOrDrop()
	case key.Matches(msg, m.keys.Cancel):
		if m.picked != "" {
			m.picked = ""
			m.setStatus("Swap cancelled")
		}
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Bis):
		m.withSelected(func(id string) error { return m.board.IncrementBis(id) })
	case key.Matches(msg, m.keys.Remove):
		m.withSelected(func(id string) error {
			if m.picked == id {
				m.picked = ""
			}
			return m.board.Remove(id)
		})
	case key.Matches(msg, m.keys.SortAsc):
		m.board.SortAscending()
		m.setStatus("Sorted by number, ascending")
	case key.Matches(msg, m.keys.SortDesc):
		m.board.SortDescending()
		m.setStatus("Sorted by number, descending")
	case key.Matches(msg, m.keys.Renumber):
		m.board.RenumberByDisplayOrder()
		m.setStatus("Renumbered in display order")
	case key.Matches(msg, m.keys.Prefix):
		return m.startPrefixForm()
	case key.Matches(msg, m.keys.Clear):
		return m.startClearForm()
	case key.Matches(msg, m.keys.Open):
		m.state = StateOpen
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Export):
		return m.startExport()
	case key.Matches(msg, m.keys.Help):
		m.state = StateGuide
		return m, nil
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelExport != nil {
		m.cancelExport()
	}
	if m.previews != nil {
		logger.Debug("Quitting", "filled", m.board.CountFilled(), "live_previews", m.previews.Live())
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) withSelected(fn func(id string) error) {
	s, ok := m.grid.Selected()
	if !ok {
		return
	}
	if err := fn(s.ID); err != nil {
		m.setError(err.Error())
	}
}

// pickOrDrop picks up the photo under the cursor, or swaps it with the one
// already picked up.
func (m *Model) pickOrDrop() {
	s, ok := m.grid.Selected()
	if !ok {
		return
	}
	if m.picked == "" {
		if !s.Filled() {
			m.setError("Nothing to pick up in this slot")
			return
		}
		m.picked = s.ID
		m.setStatus(fmt.Sprintf("Picked %s, move to a slot and press space", s.Content.File.Name))
		return
	}
	if m.picked == s.ID {
		m.picked = ""
		m.setStatus("Swap cancelled")
		return
	}
	if err := m.board.SwapContent(m.picked, s.ID); err != nil {
		m.setError(err.Error())
	} else {
		m.setStatus("Swapped")
	}
	m.picked = ""
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	s, ok := m.grid.Selected()
	if !ok {
		return m, nil
	}
	m.editing = s.ID
	m.input.SetValue(s.Label())
	m.input.CursorEnd()
	m.state = StateEditPosition
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateEditPosition(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			m.input.Blur()
			m.state = StateBoard
			return m, nil
		case tea.KeyEnter:
			m.input.Blur()
			m.state = StateBoard
			if err := m.board.EditPosition(m.editing, m.input.Value()); err != nil {
				m.setError(err.Error())
			} else if s, ok := m.board.Slot(m.editing); ok {
				m.setStatus("Numbered " + s.Label())
			}
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startPrefixForm() (tea.Model, tea.Cmd) {
	m.prefixForm = &PrefixFormModel{Prefix: m.prefix}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("File name prefix").
				Description("Exported as prefix-12_3.jpg. Leave blank for none.").
				Value(&m.prefixForm.Prefix),
		),
	)
	m.state = StatePrefix
	return m, m.form.Init()
}

func (m Model) updatePrefixForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBoard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.setPrefix(m.prefixForm.Prefix)
		m.state = StateBoard
	case huh.StateAborted:
		m.state = StateBoard
	}
	return m, cmd
}

func (m *Model) setPrefix(prefix string) {
	m.prefix = strings.TrimSpace(prefix)
	if m.prefix == "" {
		m.setStatus("Prefix cleared")
	} else {
		m.setStatus("Prefix set to " + m.prefix)
	}
}

func (m Model) startClearForm() (tea.Model, tea.Cmd) {
	m.clearForm = &ClearFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Clear all %d photos and the prefix?", m.board.CountFilled())).
				Affirmative("Clear").
				Negative("Cancel").
				Value(&m.clearForm.Confirm),
		),
	)
	m.state = StateConfirmClear
	return m, m.form.Init()
}

func (m Model) updateClearForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBoard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.clearForm.Confirm {
			m.clearBoard()
		}
		m.state = StateBoard
	case huh.StateAborted:
		m.state = StateBoard
	}
	return m, cmd
}

// clearBoard empties every slot and resets the prefix. Reads still in
// flight are rejected when they land because their tickets went stale.
func (m *Model) clearBoard() {
	m.board.ClearAll()
	m.prefix = ""
	m.picked = ""
	m.setStatus("Board cleared")
	m.refresh()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && (msg.Type == tea.KeyEsc || msg.String() == "q") {
		m.state = StateBoard
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.state = StateBoard
		next, openCmd := m.openPath(path)
		return next, tea.Batch(cmd, openCmd)
	}
	return m, cmd
}

// openPath loads a directory into the first empty slots, or a single photo
// into the slot under the cursor.
func (m Model) openPath(path string) (Model, tea.Cmd) {
	info, err := os.Stat(path)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	if info.IsDir() {
		m.setStatus("Loading " + filepath.Base(path) + "…")
		return m, loadFilesCmd(context.Background(), []string{path})
	}

	if !slices.Contains(constants.ImageExtensions, strings.ToLower(filepath.Ext(path))) {
		m.setError(filepath.Base(path) + " is not a photo")
		return m, nil
	}
	s, ok := m.grid.Selected()
	if !ok {
		return m, nil
	}
	t, err := m.board.Expect(s.ID)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.pending++
	m.setStatus("Reading " + filepath.Base(path) + "…")
	return m, loadSlotFileCmd(t, path)
}

func (m Model) handleFilesLoaded(msg filesLoadedMsg) Model {
	n, err := m.board.AssignFiles(msg.files)
	m.refresh()

	failed := 0
	var assignErr *board.AssignError
	switch {
	case errors.Is(err, board.ErrNoCapacity):
		m.setError("No empty slot left")
		return m
	case errors.As(err, &assignErr):
		failed = len(assignErr.Failed)
	case err != nil:
		m.setError(err.Error())
		return m
	}

	images := 0
	for _, f := range msg.files {
		if f.IsImage() {
			images++
		}
	}

	var problems []string
	if len(msg.errs) > 0 {
		problems = append(problems, fmt.Sprintf("%d file(s) could not be read", len(msg.errs)))
	}
	if failed > 0 {
		problems = append(problems, fmt.Sprintf("%d could not be previewed", failed))
	}
	if skipped := images - n - failed; skipped > 0 {
		problems = append(problems, fmt.Sprintf("%d did not fit", skipped))
	}
	if len(problems) > 0 {
		m.setError(fmt.Sprintf("Added %d photo(s); %s", n, strings.Join(problems, ", ")))
		return m
	}
	m.setStatus(fmt.Sprintf("Added %d photo(s)", n))
	return m
}

func (m Model) handleSlotFileLoaded(msg slotFileLoadedMsg) Model {
	m.pending = max(0, m.pending-1)
	if msg.err != nil {
		m.setError(msg.err.Error())
		return m
	}

	err := m.board.Fulfill(msg.ticket, msg.file)
	switch {
	case errors.Is(err, board.ErrStaleTicket):
		logger.Debug("Dropped stale slot read", "slot", msg.ticket.SlotID, "file", msg.file.Name)
		m.setError("The slot changed while " + msg.file.Name + " was loading; it was not added")
	case err != nil:
		m.setError(err.Error())
	default:
		m.setStatus("Added " + msg.file.Name)
	}
	m.refresh()
	return m
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting {
		m.setError("An export is already running")
		return m, nil
	}
	entries := m.board.BuildExportManifest(m.prefix)
	if len(entries) == 0 {
		m.setError("Nothing to export")
		return m, nil
	}
	if dups := board.Collisions(entries); len(dups) > 0 {
		logger.Warn("Export names collide", "names", dups)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.exporting = true
	m.cancelExport = cancel
	m.setStatus(fmt.Sprintf("Exporting %d photo(s) to %s", len(entries), m.out))
	return m, tea.Batch(m.spinner.Tick, exportCmd(ctx, m.out, entries))
}

func (m Model) handleExportDone(msg exportDoneMsg) Model {
	if m.cancelExport != nil {
		m.cancelExport()
	}
	m.exporting = false
	m.cancelExport = nil

	if msg.err != nil {
		m.setError(apperrors.Formatf("export to %s failed: %v", filepath.Base(msg.path), msg.err))
		return m
	}
	status := fmt.Sprintf("Exported %d photo(s) (%s) to %s", msg.result.Entries, humanize.Bytes(uint64(msg.result.Bytes)), msg.path)
	if n := len(msg.result.Renamed); n > 0 {
		status += fmt.Sprintf(", %d duplicate name(s) marked with %s", n, constants.CollisionMarker)
	}
	if msg.backup != "" {
		status += ", previous archive kept in " + filepath.Dir(msg.backup)
	}
	m.setStatus(status)
	return m
}

func (m Model) updateGuide(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
			m.state = StateBoard
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.guide, cmd = m.guide.Update(msg)
	return m, cmd
}
