// Package script reads YAML operation scripts and replays them against a
// board, so a numbering session can be repeated without the TUI.
//
//	prefix: lot
//	ops:
//	  - op: edit
//	    slot: 3
//	    value: "12_1"
//	  - op: swap
//	    a: slot-1
//	    b: slot-4
//	  - op: sort
//	    order: desc
//	  - op: renumber
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/models"
)

const (
	OpEdit     = "edit"
	OpBis      = "bis"
	OpSwap     = "swap"
	OpRemove   = "remove"
	OpSort     = "sort"
	OpRenumber = "renumber"
	OpClear    = "clear"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var (
	ErrUnknownOp  = errors.New("unknown op")
	ErrMissingArg = errors.New("missing argument")
	ErrBadSlotRef = errors.New("invalid slot reference")
	ErrBadOrder   = errors.New("order must be asc or desc")
)

type Op struct {
	Op    string `yaml:"op"`
	Slot  string `yaml:"slot,omitempty"`
	Value string `yaml:"value,omitempty"`
	A     string `yaml:"a,omitempty"`
	B     string `yaml:"b,omitempty"`
	Order string `yaml:"order,omitempty"`
}

type Script struct {
	Prefix string `yaml:"prefix,omitempty"`
	Ops    []Op   `yaml:"ops"`
}

// Parse decodes and validates a script. Unknown keys and unknown ops are
// rejected before anything is applied. An empty document is a valid script
// with no ops.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	for i, op := range s.Ops {
		if err := op.validate(); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
	}
	return &s, nil
}

// Load reads the script at path
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply runs the ops in order and stops at the first one that fails. Ops
// that already ran stay applied.
func (s *Script) Apply(b *board.Board) error {
	for i, op := range s.Ops {
		if err := op.apply(b); err != nil {
			return fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
	}
	logger.Debug("Applied script", "ops", len(s.Ops))
	return nil
}

func (o Op) validate() error {
	switch o.Op {
	case OpEdit:
		if o.Value == "" {
			return fmt.Errorf("%w: value", ErrMissingArg)
		}
		return requireSlot(o.Slot)
	case OpBis, OpRemove:
		return requireSlot(o.Slot)
	case OpSwap:
		if err := requireSlot(o.A); err != nil {
			return err
		}
		return requireSlot(o.B)
	case OpSort:
		if o.Order != "" && o.Order != OrderAsc && o.Order != OrderDesc {
			return fmt.Errorf("%w: %q", ErrBadOrder, o.Order)
		}
		return nil
	case OpRenumber, OpClear:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, o.Op)
	}
}

func (o Op) apply(b *board.Board) error {
	switch o.Op {
	case OpEdit:
		id, err := SlotRef(o.Slot)
		if err != nil {
			return err
		}
		return b.EditPosition(id, o.Value)
	case OpBis:
		id, err := SlotRef(o.Slot)
		if err != nil {
			return err
		}
		return b.IncrementBis(id)
	case OpRemove:
		id, err := SlotRef(o.Slot)
		if err != nil {
			return err
		}
		return b.Remove(id)
	case OpSwap:
		a, err := SlotRef(o.A)
		if err != nil {
			return err
		}
		c, err := SlotRef(o.B)
		if err != nil {
			return err
		}
		return b.SwapContent(a, c)
	case OpSort:
		if o.Order == OrderDesc {
			b.SortDescending()
		} else {
			b.SortAscending()
		}
	case OpRenumber:
		b.RenumberByDisplayOrder()
	case OpClear:
		b.ClearAll()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, o.Op)
	}
	return nil
}

// SlotRef resolves "slot-7" or a bare "7" to a slot id
func SlotRef(ref string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(ref), constants.SlotIDPrefix)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: %q", ErrBadSlotRef, ref)
	}
	return models.SlotID(n), nil
}

func requireSlot(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: slot", ErrMissingArg)
	}
	_, err := SlotRef(ref)
	return err
}
