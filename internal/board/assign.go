package board

import (
	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/models"
)

// Ticket reserves a slot for a file that is still being read. It is only
// honored if the slot has not been filled, emptied, swapped or cleared since.
type Ticket struct {
	SlotID     string
	generation uint64
}

// AssignFiles binds image files to the first empty slots in board order, one
// file per slot in input order, and returns how many were bound. Non-image
// files are dropped silently and files beyond the free capacity are ignored.
//
// ErrNoCapacity is returned, with no state change, when files is non-empty
// and the board has no empty slot. Files whose preview cannot be created are
// reported in an *AssignError; they do not consume a slot and the rest of the
// batch is still bound.
func (b *Board) AssignFiles(files []models.File) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	var empty []int
	for i := range b.slots {
		if !b.slots[i].Filled() {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return 0, ErrNoCapacity
	}

	var failed []FileError
	assigned := 0
	for _, f := range files {
		if assigned == len(empty) {
			break
		}
		if !f.IsImage() {
			continue
		}
		p, err := b.createPreview(f)
		if err != nil {
			failed = append(failed, FileError{Name: f.Name, Err: err})
			continue
		}
		b.bind(empty[assigned], f, p)
		b.slots[empty[assigned]].DisplayPosition = 0
		assigned++
	}

	logger.Debug("Assigned files", "input", len(files), "assigned", assigned, "failed", len(failed))
	if len(failed) > 0 {
		return assigned, &AssignError{Failed: failed}
	}
	return assigned, nil
}

// AssignToSlot binds a single image to a specific slot, replacing and
// releasing whatever it held before. The slot keeps its displayed number;
// only the bis number is reset.
func (b *Board) AssignToSlot(id string, f models.File) error {
	i, err := b.mustIndex(id)
	if err != nil {
		return err
	}
	if !f.IsImage() {
		return FileError{Name: f.Name, Err: ErrNotImage}
	}
	p, err := b.createPreview(f)
	if err != nil {
		return FileError{Name: f.Name, Err: err}
	}
	b.release(i)
	b.bind(i, f, p)
	return nil
}

// Expect reserves the slot for a file read that completes later
func (b *Board) Expect(id string) (Ticket, error) {
	if _, err := b.mustIndex(id); err != nil {
		return Ticket{}, err
	}
	return Ticket{SlotID: id, generation: b.generations[id]}, nil
}

// Fulfill binds the file read for ticket t, unless the slot changed since
// the ticket was issued.
func (b *Board) Fulfill(t Ticket, f models.File) error {
	if _, err := b.mustIndex(t.SlotID); err != nil {
		return err
	}
	if b.generations[t.SlotID] != t.generation {
		return ErrStaleTicket
	}
	return b.AssignToSlot(t.SlotID, f)
}

// Remove detaches the slot content and resets its number and bis
func (b *Board) Remove(id string) error {
	i, err := b.mustIndex(id)
	if err != nil {
		return err
	}
	b.release(i)
	s := &b.slots[i]
	s.DisplayPosition = 0
	s.BisNumber = 0
	b.touch(i)
	return nil
}

// ClearAll releases every preview, detaches every file and resets all
// display overrides and bis numbers. The slot count and base positions are
// left untouched.
func (b *Board) ClearAll() {
	for i := range b.slots {
		b.release(i)
		b.slots[i].DisplayPosition = 0
		b.slots[i].BisNumber = 0
		b.touch(i)
	}
	logger.Debug("Cleared board", "slots", len(b.slots))
}

func (b *Board) createPreview(f models.File) (models.Preview, error) {
	if b.previews == nil {
		return models.Preview{Size: f.Size()}, nil
	}
	return b.previews.Create(f)
}

func (b *Board) bind(i int, f models.File, p models.Preview) {
	s := &b.slots[i]
	s.Content = &models.Content{File: f, Preview: p}
	s.BisNumber = 0
	b.touch(i)
}
