package board

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/dragx/internal/models"
)

// fakePreviews hands out sequential handles and tracks which are alive.
type fakePreviews struct {
	next int
	live map[string]bool
	fail map[string]bool
}

func newFakePreviews() *fakePreviews {
	return &fakePreviews{live: make(map[string]bool), fail: make(map[string]bool)}
}

func (f *fakePreviews) Create(file models.File) (models.Preview, error) {
	if f.fail[file.Name] {
		return models.Preview{}, errors.New("unreadable image")
	}
	f.next++
	p := models.Preview{ID: fmt.Sprintf("p%d", f.next), Size: file.Size()}
	f.live[p.ID] = true
	return p, nil
}

func (f *fakePreviews) Release(p models.Preview) {
	delete(f.live, p.ID)
}

func img(name string) models.File {
	return models.File{Name: name, MIMEType: "image/jpeg", Data: []byte(name)}
}

func newBoard(t *testing.T, n int) (*Board, *fakePreviews) {
	t.Helper()
	p := newFakePreviews()
	return New(n, p), p
}

func fileAt(t *testing.T, b *Board, i int) string {
	t.Helper()
	s, ok := b.At(i)
	require.True(t, ok)
	if !s.Filled() {
		return ""
	}
	return s.Content.File.Name
}

func assertCapacity(t *testing.T, b *Board, n int) {
	t.Helper()
	assert.Equal(t, n, b.Len())
	assert.Equal(t, n, b.CountFilled()+b.CountEmpty())
}

func TestNew(t *testing.T) {
	b, _ := newBoard(t, 5)
	require.Equal(t, 5, b.Len())
	for i, s := range b.Slots() {
		assert.Equal(t, fmt.Sprintf("slot-%d", i+1), s.ID)
		assert.Equal(t, i+1, s.BasePosition)
		assert.False(t, s.HasOverride())
		assert.Zero(t, s.BisNumber)
		assert.False(t, s.Filled())
	}

	assert.Equal(t, 500, New(0, nil).Len(), "non-positive size falls back to the default")
}

func TestAssignFiles(t *testing.T) {
	b, p := newBoard(t, 4)
	require.NoError(t, b.EditPosition("slot-2", "9_2"))

	files := []models.File{
		img("a.jpg"),
		{Name: "notes.pdf", MIMEType: "application/pdf", Data: []byte("pdf")},
		img("b.jpg"),
	}
	n, err := b.AssignFiles(files)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "a.jpg", fileAt(t, b, 0))
	assert.Equal(t, "b.jpg", fileAt(t, b, 1))
	assert.Equal(t, "", fileAt(t, b, 2))

	s, _ := b.Slot("slot-2")
	assert.False(t, s.HasOverride(), "newly bound slot displays its base position")
	assert.Zero(t, s.BisNumber)
	assert.Len(t, p.live, 2)
	assertCapacity(t, b, 4)
}

func TestAssignFilesFillsGapsInBoardOrder(t *testing.T) {
	b, _ := newBoard(t, 4)
	require.NoError(t, b.AssignToSlot("slot-1", img("x.jpg")))
	require.NoError(t, b.AssignToSlot("slot-3", img("y.jpg")))

	n, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only as many files as there are empty slots")
	assert.Equal(t, []string{"x.jpg", "a.jpg", "y.jpg", "b.jpg"},
		[]string{fileAt(t, b, 0), fileAt(t, b, 1), fileAt(t, b, 2), fileAt(t, b, 3)})
}

func TestAssignFilesNoCapacity(t *testing.T) {
	b, p := newBoard(t, 1)
	_, err := b.AssignFiles([]models.File{img("a.jpg")})
	require.NoError(t, err)

	before := b.Slots()
	n, err := b.AssignFiles([]models.File{img("b.jpg")})
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Zero(t, n)
	assert.Equal(t, before, b.Slots())
	assert.Len(t, p.live, 1)

	n, err = b.AssignFiles(nil)
	assert.NoError(t, err, "empty input is not a capacity error")
	assert.Zero(t, n)
}

func TestAssignFilesReportsPreviewFailures(t *testing.T) {
	b, p := newBoard(t, 3)
	p.fail["broken.jpg"] = true

	n, err := b.AssignFiles([]models.File{img("a.jpg"), img("broken.jpg"), img("c.jpg")})
	assert.Equal(t, 2, n)

	var assignErr *AssignError
	require.ErrorAs(t, err, &assignErr)
	require.Len(t, assignErr.Failed, 1)
	assert.Equal(t, "broken.jpg", assignErr.Failed[0].Name)

	assert.Equal(t, "a.jpg", fileAt(t, b, 0))
	assert.Equal(t, "c.jpg", fileAt(t, b, 1), "a failed file does not consume a slot")
	assert.Equal(t, "", fileAt(t, b, 2))
}

func TestAssignToSlotReplacesAndReleases(t *testing.T) {
	b, p := newBoard(t, 3)
	require.NoError(t, b.AssignToSlot("slot-2", img("a.jpg")))
	require.NoError(t, b.IncrementBis("slot-2"))
	first, _ := b.Slot("slot-2")

	require.NoError(t, b.AssignToSlot("slot-2", img("b.jpg")))
	s, _ := b.Slot("slot-2")
	assert.Equal(t, "b.jpg", s.Content.File.Name)
	assert.Zero(t, s.BisNumber)
	assert.False(t, p.live[first.Content.Preview.ID], "replaced preview must be released")
	assert.Len(t, p.live, 1)

	err := b.AssignToSlot("slot-1", models.File{Name: "doc.txt", MIMEType: "text/plain"})
	assert.ErrorIs(t, err, ErrNotImage)
	assert.ErrorIs(t, b.AssignToSlot("slot-99", img("c.jpg")), ErrSlotNotFound)
}

func TestAssignToSlotKeepsDisplayedNumber(t *testing.T) {
	b, _ := newBoard(t, 5)
	require.NoError(t, b.AssignToSlot("slot-3", img("a.jpg")))
	b.RenumberByDisplayOrder()

	before, _ := b.Slot("slot-1")
	require.Equal(t, "2", before.Label())

	require.NoError(t, b.AssignToSlot("slot-1", img("b.jpg")))
	after, _ := b.Slot("slot-1")
	assert.Equal(t, before.Label(), after.Label())
	assert.Equal(t, 2, after.EffectivePosition())
	assert.Empty(t, Collisions(b.BuildExportManifest("")))

	require.NoError(t, b.EditPosition("slot-2", "4_3"))
	require.NoError(t, b.AssignToSlot("slot-2", img("c.jpg")))
	s, _ := b.Slot("slot-2")
	assert.Equal(t, 4, s.EffectivePosition())
	assert.Zero(t, s.BisNumber)
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		raw     string
		wantPos int
		wantBis int
	}{
		{raw: "12", wantPos: 12},
		{raw: "12_3", wantPos: 12, wantBis: 3},
		{raw: " 7_2", wantPos: 7, wantBis: 2},
		{raw: "12abc_4x", wantPos: 12, wantBis: 4},
		{raw: "abc", wantPos: 0},
		{raw: "", wantPos: 0},
		{raw: "_5", wantPos: 0, wantBis: 5},
		{raw: "999", wantPos: 50},
		{raw: "-4_-2", wantPos: 0, wantBis: 0},
		{raw: "3_40", wantPos: 3, wantBis: 12},
		{raw: "99999999999999999999999", wantPos: 50},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			pos, bis := ParsePosition(tt.raw, 50)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantBis, bis)
		})
	}
}

func TestEditPosition(t *testing.T) {
	b, _ := newBoard(t, 20)

	require.NoError(t, b.EditPosition("slot-4", "12_3"))
	s, _ := b.Slot("slot-4")
	assert.Equal(t, 12, s.DisplayPosition)
	assert.Equal(t, 3, s.BisNumber)

	require.NoError(t, b.EditPosition("slot-4", "0"))
	s, _ = b.Slot("slot-4")
	assert.Equal(t, 12, s.DisplayPosition, "position 0 keeps the previous one")
	assert.Zero(t, s.BisNumber, "bis is always replaced")

	require.NoError(t, b.EditPosition("slot-5", "junk_2"))
	s, _ = b.Slot("slot-5")
	assert.False(t, s.HasOverride())
	assert.Equal(t, 5, s.EffectivePosition())
	assert.Equal(t, 2, s.BisNumber)

	assert.ErrorIs(t, b.EditPosition("nope", "1"), ErrSlotNotFound)
}

func TestIncrementBisWraps(t *testing.T) {
	b, _ := newBoard(t, 2)
	for i := 1; i <= 30; i++ {
		require.NoError(t, b.IncrementBis("slot-1"))
		s, _ := b.Slot("slot-1")
		assert.GreaterOrEqual(t, s.BisNumber, 0)
		assert.LessOrEqual(t, s.BisNumber, 12)
		assert.Equal(t, i%13, s.BisNumber)
	}
}

func TestSwapContentKeepsNumbers(t *testing.T) {
	b, _ := newBoard(t, 5)
	require.NoError(t, b.AssignToSlot("slot-1", img("a.jpg")))
	require.NoError(t, b.AssignToSlot("slot-3", img("c.jpg")))
	require.NoError(t, b.EditPosition("slot-1", "40_2"))
	require.NoError(t, b.EditPosition("slot-3", "7"))
	before1, _ := b.Slot("slot-1")
	before3, _ := b.Slot("slot-3")

	require.NoError(t, b.SwapContent("slot-1", "slot-3"))

	after1, _ := b.Slot("slot-1")
	after3, _ := b.Slot("slot-3")
	assert.Equal(t, "c.jpg", after1.Content.File.Name)
	assert.Equal(t, "a.jpg", after3.Content.File.Name)
	for _, pair := range [][2]models.Slot{{before1, after1}, {before3, after3}} {
		assert.Equal(t, pair[0].BasePosition, pair[1].BasePosition)
		assert.Equal(t, pair[0].DisplayPosition, pair[1].DisplayPosition)
		assert.Equal(t, pair[0].BisNumber, pair[1].BisNumber)
	}

	require.NoError(t, b.SwapContent("slot-1", "slot-2"))
	s, _ := b.Slot("slot-1")
	assert.False(t, s.Filled(), "swapping with an empty slot moves the photo")

	assert.ErrorIs(t, b.SwapContent("slot-1", "slot-42"), ErrSlotNotFound)
}

func TestSortAscending(t *testing.T) {
	b, _ := newBoard(t, 6)
	require.NoError(t, b.AssignToSlot("slot-2", img("b.jpg")))
	require.NoError(t, b.AssignToSlot("slot-4", img("d.jpg")))
	require.NoError(t, b.AssignToSlot("slot-6", img("f.jpg")))
	require.NoError(t, b.EditPosition("slot-6", "1"))
	require.NoError(t, b.EditPosition("slot-4", "2_1"))
	require.NoError(t, b.EditPosition("slot-2", "2"))

	emptyBefore := emptyIDs(b)
	b.SortAscending()

	ids := make([]string, 0, 3)
	for _, s := range b.Slots()[:3] {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"slot-6", "slot-2", "slot-4"}, ids)
	assert.Equal(t, emptyBefore, emptyIDs(b), "empty slots keep their relative order")

	s, _ := b.Slot("slot-6")
	assert.Equal(t, 1, s.EffectivePosition(), "sorting does not renumber")
	assertCapacity(t, b, 6)
}

func TestSortDescending(t *testing.T) {
	b, _ := newBoard(t, 5)
	_, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
	require.NoError(t, err)
	require.NoError(t, b.EditPosition("slot-2", "2_4"))

	emptyBefore := emptyIDs(b)
	b.SortDescending()

	assert.Equal(t, []string{"c.jpg", "b.jpg", "a.jpg"},
		[]string{fileAt(t, b, 0), fileAt(t, b, 1), fileAt(t, b, 2)})
	assert.Equal(t, emptyBefore, emptyIDs(b))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	b, _ := newBoard(t, 3)
	_, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
	require.NoError(t, err)
	for _, id := range []string{"slot-1", "slot-2", "slot-3"} {
		require.NoError(t, b.EditPosition(id, "5"))
	}

	b.SortAscending()
	assert.Equal(t, "a.jpg", fileAt(t, b, 0))
	b.SortDescending()
	assert.Equal(t, "a.jpg", fileAt(t, b, 0), "ties keep their order in both directions")
}

func TestRenumberPinsBisSlots(t *testing.T) {
	b, _ := newBoard(t, 5)
	_, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
	require.NoError(t, err)
	require.NoError(t, b.IncrementBis("slot-2"))

	b.RenumberByDisplayOrder()

	positions := map[string]string{}
	for _, s := range b.Slots() {
		positions[s.ID] = s.Label()
	}
	assert.Equal(t, "1", positions["slot-1"])
	assert.Equal(t, "2_1", positions["slot-2"])
	assert.Equal(t, "3", positions["slot-3"])
	// empties skip 1..3, which are held by filled slots
	assert.Equal(t, "4", positions["slot-4"])
	assert.Equal(t, "5", positions["slot-5"])
}

func TestRenumberCompressesGaps(t *testing.T) {
	b, _ := newBoard(t, 10)
	require.NoError(t, b.AssignToSlot("slot-3", img("a.jpg")))
	require.NoError(t, b.AssignToSlot("slot-7", img("b.jpg")))
	require.NoError(t, b.AssignToSlot("slot-9", img("c.jpg")))
	require.NoError(t, b.EditPosition("slot-9", "1"))

	b.RenumberByDisplayOrder()

	c, _ := b.Slot("slot-9")
	a, _ := b.Slot("slot-3")
	bb, _ := b.Slot("slot-7")
	assert.Equal(t, 1, c.EffectivePosition())
	assert.Equal(t, 2, a.EffectivePosition())
	assert.Equal(t, 3, bb.EffectivePosition())

	first, _ := b.At(0)
	assert.Equal(t, 4, first.EffectivePosition(), "first empty slot takes the first free number")
}

func TestRenumberMovesPlainSlotOffClaimedNumber(t *testing.T) {
	b, _ := newBoard(t, 4)
	_, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg")})
	require.NoError(t, err)
	require.NoError(t, b.EditPosition("slot-1", "1_2"))
	require.NoError(t, b.EditPosition("slot-2", "1"))

	b.RenumberByDisplayOrder()

	pinned, _ := b.Slot("slot-1")
	plain, _ := b.Slot("slot-2")
	assert.Equal(t, "1_2", pinned.Label())
	assert.Equal(t, "2", plain.Label(), "1 is claimed by the bis slot")
}

func TestRenumberIsIdempotent(t *testing.T) {
	setups := map[string]func(b *Board){
		"no bis": func(b *Board) {
			_, _ = b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
			_ = b.EditPosition("slot-3", "1")
			_ = b.EditPosition("slot-1", "8")
		},
		"with bis": func(b *Board) {
			_, _ = b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg"), img("d.jpg")})
			_ = b.EditPosition("slot-2", "1_1")
			_ = b.EditPosition("slot-4", "3_2")
			_ = b.EditPosition("slot-3", "3")
		},
		"after sort and swap": func(b *Board) {
			_, _ = b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
			_ = b.EditPosition("slot-1", "6_1")
			_ = b.SwapContent("slot-1", "slot-5")
			b.SortDescending()
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			b, _ := newBoard(t, 8)
			setup(b)

			b.RenumberByDisplayOrder()
			once := b.Slots()
			b.RenumberByDisplayOrder()
			assert.Equal(t, once, b.Slots())
		})
	}
}

func TestRemove(t *testing.T) {
	b, p := newBoard(t, 3)
	require.NoError(t, b.AssignToSlot("slot-2", img("a.jpg")))
	require.NoError(t, b.EditPosition("slot-2", "9_1"))

	require.NoError(t, b.Remove("slot-2"))
	s, _ := b.Slot("slot-2")
	assert.False(t, s.Filled())
	assert.False(t, s.HasOverride())
	assert.Zero(t, s.BisNumber)
	assert.Empty(t, p.live)
}

func TestClearAll(t *testing.T) {
	b, p := newBoard(t, 6)
	_, err := b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")})
	require.NoError(t, err)
	require.NoError(t, b.EditPosition("slot-1", "5_2"))
	require.NoError(t, b.IncrementBis("slot-6"))
	b.SortDescending()

	b.ClearAll()

	assert.Equal(t, 6, b.Len())
	for _, s := range b.Slots() {
		assert.False(t, s.Filled())
		assert.False(t, s.HasOverride())
		assert.Zero(t, s.BisNumber)
	}
	assert.Empty(t, p.live, "every preview is released")
	assert.Equal(t, 6, b.CountEmpty())
}

func TestLivePreviewsMatchFilledSlots(t *testing.T) {
	b, p := newBoard(t, 4)
	check := func() {
		t.Helper()
		assert.Equal(t, b.CountFilled(), len(p.live))
	}

	_, _ = b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg")})
	check()
	_ = b.AssignToSlot("slot-1", img("c.jpg"))
	check()
	_ = b.SwapContent("slot-1", "slot-4")
	check()
	_ = b.Remove("slot-2")
	check()
	_, _ = b.AssignFiles([]models.File{img("d.jpg"), img("e.jpg"), img("f.jpg")})
	check()
	b.ClearAll()
	check()
}

func TestTickets(t *testing.T) {
	b, p := newBoard(t, 3)

	ticket, err := b.Expect("slot-2")
	require.NoError(t, err)
	require.NoError(t, b.Fulfill(ticket, img("a.jpg")))
	assert.Equal(t, "a.jpg", fileAt(t, b, 1))

	stale, err := b.Expect("slot-3")
	require.NoError(t, err)
	b.ClearAll()
	assert.ErrorIs(t, b.Fulfill(stale, img("late.jpg")), ErrStaleTicket)
	assert.Equal(t, 0, b.CountFilled())
	assert.Empty(t, p.live, "a rejected read never creates a preview")

	replaced, err := b.Expect("slot-1")
	require.NoError(t, err)
	require.NoError(t, b.AssignToSlot("slot-1", img("other.jpg")))
	assert.ErrorIs(t, b.Fulfill(replaced, img("late.jpg")), ErrStaleTicket)
	assert.Equal(t, "other.jpg", fileAt(t, b, 0))

	unchanged, err := b.Expect("slot-3")
	require.NoError(t, err)
	require.NoError(t, b.EditPosition("slot-3", "9_1"))
	assert.NoError(t, b.Fulfill(unchanged, img("kept.jpg")), "number edits do not invalidate a ticket")

	_, err = b.Expect("slot-0")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestPages(t *testing.T) {
	b, _ := newBoard(t, 250)
	assert.Equal(t, 3, b.Pages(100))
	assert.Len(t, b.Page(0, 100), 100)
	assert.Len(t, b.Page(2, 100), 50)
	assert.Nil(t, b.Page(3, 100))
	assert.Equal(t, "slot-101", b.Page(1, 100)[0].ID)
}

func TestCapacityInvariantAcrossOperations(t *testing.T) {
	b, _ := newBoard(t, 7)
	ops := []func(){
		func() { _, _ = b.AssignFiles([]models.File{img("a.jpg"), img("b.jpg"), img("c.jpg")}) },
		func() { _ = b.SwapContent("slot-1", "slot-7") },
		func() { b.SortAscending() },
		func() { _ = b.Remove("slot-2") },
		func() { b.RenumberByDisplayOrder() },
		func() { b.SortDescending() },
		func() { _, _ = b.AssignFiles([]models.File{img("d.jpg")}) },
		func() { b.ClearAll() },
	}
	for _, op := range ops {
		op()
		assertCapacity(t, b, 7)
	}
}

func emptyIDs(b *Board) []string {
	var ids []string
	for _, s := range b.Slots() {
		if !s.Filled() {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
