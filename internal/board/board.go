// Package board implements the slot board: a fixed-size, ordered collection
// of numbered slots that image files are bound to, reordered, renumbered and
// finally exported from.
//
// A Board is not safe for concurrent use. It is meant to be owned by a single
// event loop; asynchronous file reads hand their results back to that loop
// and go through Expect/Fulfill so a stale result can never overwrite a slot
// that changed in the meantime.
package board

import (
	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/models"
)

// Previewer creates and releases the preview resource of a bound file.
type Previewer interface {
	Create(f models.File) (models.Preview, error)
	Release(p models.Preview)
}

type Board struct {
	slots       []models.Slot
	generations map[string]uint64
	previews    Previewer
}

// New allocates a board of n empty slots. A non-positive n falls back to the
// default slot count.
func New(n int, previews Previewer) *Board {
	if n <= 0 {
		n = constants.TotalSlots
	}
	b := &Board{
		slots:       make([]models.Slot, n),
		generations: make(map[string]uint64, n),
		previews:    previews,
	}
	for i := range b.slots {
		id := models.SlotID(i + 1)
		b.slots[i] = models.Slot{ID: id, BasePosition: i + 1}
		b.generations[id] = 0
	}
	return b
}

// Len returns the fixed slot count N
func (b *Board) Len() int {
	return len(b.slots)
}

// Slots returns a copy of the slots in current board order
func (b *Board) Slots() []models.Slot {
	out := make([]models.Slot, len(b.slots))
	copy(out, b.slots)
	return out
}

// Slot returns the slot with the given id
func (b *Board) Slot(id string) (models.Slot, bool) {
	i := b.Index(id)
	if i < 0 {
		return models.Slot{}, false
	}
	return b.slots[i], true
}

// At returns the slot at board index i
func (b *Board) At(i int) (models.Slot, bool) {
	if i < 0 || i >= len(b.slots) {
		return models.Slot{}, false
	}
	return b.slots[i], true
}

// Index returns the current board index of the slot, or -1
func (b *Board) Index(id string) int {
	for i := range b.slots {
		if b.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) CountFilled() int {
	n := 0
	for i := range b.slots {
		if b.slots[i].Filled() {
			n++
		}
	}
	return n
}

func (b *Board) CountEmpty() int {
	return len(b.slots) - b.CountFilled()
}

// Pages returns the number of pages of the given size needed to show the board
func (b *Board) Pages(size int) int {
	if size <= 0 {
		return 1
	}
	return (len(b.slots) + size - 1) / size
}

// Page returns a copy of the slots on page p (zero based)
func (b *Board) Page(p, size int) []models.Slot {
	if size <= 0 {
		return b.Slots()
	}
	start := p * size
	if p < 0 || start >= len(b.slots) {
		return nil
	}
	end := min(start+size, len(b.slots))
	out := make([]models.Slot, end-start)
	copy(out, b.slots[start:end])
	return out
}

func (b *Board) mustIndex(id string) (int, error) {
	i := b.Index(id)
	if i < 0 {
		return -1, ErrSlotNotFound
	}
	return i, nil
}

// touch invalidates every outstanding ticket of the slot at index i
func (b *Board) touch(i int) {
	b.generations[b.slots[i].ID]++
}

func (b *Board) release(i int) {
	s := &b.slots[i]
	if s.Content != nil && b.previews != nil {
		b.previews.Release(s.Content.Preview)
	}
	s.Content = nil
}
