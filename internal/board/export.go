package board

import (
	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/models"
)

// BuildExportManifest lists the filled slots in current board order with the
// file name each one is exported under. Names are not deduplicated here; see
// Collisions.
func (b *Board) BuildExportManifest(prefix string) []models.Entry {
	var entries []models.Entry
	for _, s := range b.slots {
		if !s.Filled() {
			continue
		}
		entries = append(entries, models.Entry{
			Name:   ExportName(s, prefix),
			Data:   s.Content.File.Data,
			SlotID: s.ID,
		})
	}
	return entries
}

// ExportName returns "{prefix}-{position}{_bis}.{ext}", or the same without
// the prefix part when prefix is blank.
func ExportName(s models.Slot, prefix string) string {
	ext := constants.DefaultExtension
	if s.Content != nil {
		ext = s.Content.File.Extension()
	}
	name := s.Key().String() + "." + ext
	if prefix != "" {
		return prefix + constants.PrefixDelimiter + name
	}
	return name
}

// Collisions returns the names that appear more than once in the manifest,
// in order of first appearance.
func Collisions(entries []models.Entry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		seen[e.Name]++
		if seen[e.Name] == 2 {
			dups = append(dups, e.Name)
		}
	}
	return dups
}
