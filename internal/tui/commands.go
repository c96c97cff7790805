package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dragx/internal/archive"
	"github.com/julianstephens/dragx/internal/backup"
	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/ingest"
	"github.com/julianstephens/dragx/internal/models"
)

// filesLoadedMsg carries a bulk load destined for the first empty slots
type filesLoadedMsg struct {
	files []models.File
	errs  []error
}

// slotFileLoadedMsg carries a single file read for a reserved slot
type slotFileLoadedMsg struct {
	ticket board.Ticket
	file   models.File
	err    error
}

type exportDoneMsg struct {
	path   string
	backup string
	result archive.Result
	err    error
}

func loadFilesCmd(ctx context.Context, paths []string) tea.Cmd {
	return func() tea.Msg {
		files, errs := ingest.Load(ctx, paths...)
		return filesLoadedMsg{files: files, errs: errs}
	}
}

func loadSlotFileCmd(t board.Ticket, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := ingest.LoadFile(path)
		return slotFileLoadedMsg{ticket: t, file: f, err: err}
	}
}

// exportCmd writes a manifest snapshot; later board edits do not reach it.
// An archive already at path is backed up before being replaced.
func exportCmd(ctx context.Context, path string, entries []models.Entry) tea.Cmd {
	return func() tea.Msg {
		kept, err := backup.NewManager(path).CreateBackup()
		if err != nil && !errors.Is(err, backup.ErrNoArchive) {
			return exportDoneMsg{path: path, err: err}
		}
		res, err := archive.WriteFile(ctx, path, entries, archive.Options{})
		return exportDoneMsg{path: path, backup: kept, result: res, err: err}
	}
}
