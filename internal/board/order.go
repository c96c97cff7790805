package board

import (
	"slices"

	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/models"
)

// SwapContent exchanges the files (and previews) of two slots. Numbers and
// bis suffixes belong to the slot and stay where they are.
func (b *Board) SwapContent(a, c string) error {
	i, err := b.mustIndex(a)
	if err != nil {
		return err
	}
	j, err := b.mustIndex(c)
	if err != nil {
		return err
	}
	if i == j {
		return nil
	}
	b.slots[i].Content, b.slots[j].Content = b.slots[j].Content, b.slots[i].Content
	b.touch(i)
	b.touch(j)
	return nil
}

// SortAscending moves the filled slots to the front of the board ordered by
// their effective sort key. Empty slots follow in their previous relative
// order. Numbers travel with their slots; nothing is renumbered.
func (b *Board) SortAscending() {
	b.sortFilled(false)
}

// SortDescending is SortAscending with the filled slots in reverse key order
func (b *Board) SortDescending() {
	b.sortFilled(true)
}

func (b *Board) sortFilled(desc bool) {
	filled := make([]models.Slot, 0, len(b.slots))
	empty := make([]models.Slot, 0, len(b.slots))
	for _, s := range b.slots {
		if s.Filled() {
			filled = append(filled, s)
		} else {
			empty = append(empty, s)
		}
	}
	slices.SortStableFunc(filled, func(x, y models.Slot) int {
		if desc {
			return y.Key().Compare(x.Key())
		}
		return x.Key().Compare(y.Key())
	})
	b.slots = append(filled, empty...)
}

// RenumberByDisplayOrder compresses the numbers of the filled slots into a
// dense run starting at 1, following their current key order. Slots with a
// bis number are pinned: they keep their number and no other slot may take
// it. Empty slots are then numbered 1, 2, ... in board order, skipping every
// number held by a filled slot.
//
// The pass is idempotent, so applying it twice gives the same board.
func (b *Board) RenumberByDisplayOrder() {
	var filled []int
	claimed := make(map[int]bool)
	for i, s := range b.slots {
		if !s.Filled() {
			continue
		}
		filled = append(filled, i)
		if s.BisNumber != 0 {
			claimed[s.EffectivePosition()] = true
		}
	}
	slices.SortStableFunc(filled, func(x, y int) int {
		return b.slots[x].Key().Compare(b.slots[y].Key())
	})

	next := 1
	for _, i := range filled {
		s := &b.slots[i]
		if s.BisNumber != 0 {
			continue
		}
		for claimed[next] {
			next++
		}
		s.DisplayPosition = next
		next++
	}

	used := make(map[int]bool, len(filled))
	for _, i := range filled {
		used[b.slots[i].EffectivePosition()] = true
	}
	number := 1
	for i := range b.slots {
		s := &b.slots[i]
		if s.Filled() {
			continue
		}
		for used[number] {
			number++
		}
		s.DisplayPosition = number
		number++
	}

	logger.Debug("Renumbered board", "filled", len(filled), "pinned", len(claimed))
}
