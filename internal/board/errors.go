package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoCapacity   = errors.New("no empty slot available")
	ErrSlotNotFound = errors.New("slot not found")
	ErrNotImage     = errors.New("file is not an image")
	ErrStaleTicket  = errors.New("slot changed while the file was being read")
)

// FileError reports a single file of a batch that could not be bound.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// AssignError collects the per-file failures of an assignment batch. The
// files that did not fail are bound regardless.
type AssignError struct {
	Failed []FileError
}

func (e *AssignError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, f.Error())
	}
	return fmt.Sprintf("%d file(s) could not be previewed: %s", len(e.Failed), strings.Join(names, "; "))
}

func (e *AssignError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}
