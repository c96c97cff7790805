package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/dragx/internal/constants"
)

// Content is a file bound to a slot together with the preview derived from it.
// A Content value is never mutated after it is bound; swaps move the pointer.
type Content struct {
	File    File
	Preview Preview
}

// Slot is one fixed-position container of the board.
//
// DisplayPosition is zero when the slot has no manual override; valid
// overrides always lie in [1, N].
type Slot struct {
	ID              string
	BasePosition    int
	DisplayPosition int
	BisNumber       int
	Content         *Content
}

// Filled reports whether the slot currently holds a file
func (s Slot) Filled() bool {
	return s.Content != nil
}

// HasOverride reports whether the slot carries a manual display position
func (s Slot) HasOverride() bool {
	return s.DisplayPosition > 0
}

// EffectivePosition returns the display override if present, else the base position
func (s Slot) EffectivePosition() int {
	if s.DisplayPosition > 0 {
		return s.DisplayPosition
	}
	return s.BasePosition
}

// Key returns the effective sort key of the slot. Sorting, renumbering and
// export naming all order slots through this key.
func (s Slot) Key() SortKey {
	return SortKey{Position: s.EffectivePosition(), Bis: s.BisNumber}
}

// Label renders the number shown on the slot, e.g. "12" or "12_3"
func (s Slot) Label() string {
	return s.Key().String()
}

// SortKey is the (effective position, bis number) pair, compared lexicographically.
type SortKey struct {
	Position int
	Bis      int
}

// Compare returns -1, 0 or +1 depending on whether k sorts before, with, or after o
func (k SortKey) Compare(o SortKey) int {
	switch {
	case k.Position < o.Position:
		return -1
	case k.Position > o.Position:
		return 1
	case k.Bis < o.Bis:
		return -1
	case k.Bis > o.Bis:
		return 1
	default:
		return 0
	}
}

func (k SortKey) String() string {
	if k.Bis == 0 {
		return strconv.Itoa(k.Position)
	}
	return fmt.Sprintf("%d%s%d", k.Position, constants.BisDelimiter, k.Bis)
}

// SlotID returns the stable identifier of the slot at the given base position
func SlotID(basePosition int) string {
	return constants.SlotIDPrefix + strconv.Itoa(basePosition)
}
