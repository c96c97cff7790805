package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/ingest"
	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/preview"
	"github.com/julianstephens/dragx/internal/script"
)

var ErrNothingToExport = errors.New("no slot holds a photo")

type Context struct {
	Ctx    context.Context
	Slots  int
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Context returns the run context, falling back to context.Background
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) In() io.Reader {
	if c.Stdin == nil {
		return os.Stdin
	}
	return c.Stdin
}

func (c *Context) Out() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Context) Err() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// NewBoard allocates an empty board backed by a fresh preview registry
func (c *Context) NewBoard() (*board.Board, *preview.Registry) {
	previews := preview.NewRegistry()
	return board.New(c.Slots, previews), previews
}

// BoardOptions are the flags shared by every headless command that fills a
// board from disk and numbers it.
type BoardOptions struct {
	Paths    []string `arg:"" help:"Image files or directories to load, in order." type:"path"`
	Prefix   string   `help:"Prefix of exported file names." short:"p"`
	Sort     string   `help:"Sort filled slots before exporting (asc, desc)." enum:"asc,desc,none" default:"none"`
	Renumber bool     `help:"Renumber filled slots by display order." short:"r"`
	Script   string   `help:"YAML operation script applied after loading." type:"existingfile"`
}

// Session is a board filled and arranged from BoardOptions
type Session struct {
	Board    *board.Board
	Previews *preview.Registry
	Prefix   string
	Dropped  int
}

// Prepare loads the files, binds them to the board, then applies the script,
// the sort and the renumber in that order. Unreadable files are reported on
// stderr and skipped; running out of slots is an error.
func (c *Context) Prepare(opts BoardOptions) (*Session, error) {
	ctx := c.Context()
	b, previews := c.NewBoard()
	sess := &Session{Board: b, Previews: previews, Prefix: strings.TrimSpace(opts.Prefix)}

	files, errs := ingest.Load(ctx, opts.Paths...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		fmt.Fprintf(c.Err(), "warning: %v\n", err)
	}

	images := 0
	for _, f := range files {
		if f.IsImage() {
			images++
		}
	}

	assigned, err := b.AssignFiles(files)
	var assignErr *board.AssignError
	switch {
	case errors.As(err, &assignErr):
		for _, f := range assignErr.Failed {
			fmt.Fprintf(c.Err(), "warning: %v\n", f)
		}
		sess.Dropped += len(assignErr.Failed)
	case err != nil:
		return nil, err
	}
	if skipped := images - assigned - sess.Dropped; skipped > 0 {
		fmt.Fprintf(c.Err(), "warning: %d photo(s) did not fit on a %d-slot board\n", skipped, b.Len())
		sess.Dropped += skipped
	}

	if opts.Script != "" {
		s, err := script.Load(opts.Script)
		if err != nil {
			return nil, err
		}
		if sess.Prefix == "" {
			sess.Prefix = strings.TrimSpace(s.Prefix)
		}
		if err := s.Apply(b); err != nil {
			return nil, fmt.Errorf("script %s: %w", opts.Script, err)
		}
	}

	switch opts.Sort {
	case script.OrderAsc:
		b.SortAscending()
	case script.OrderDesc:
		b.SortDescending()
	}
	if opts.Renumber {
		b.RenumberByDisplayOrder()
	}

	logger.Info("Prepared board", "files", len(files), "filled", b.CountFilled(), "dropped", sess.Dropped)
	return sess, nil
}
