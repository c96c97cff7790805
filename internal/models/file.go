package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/dragx/internal/constants"
)

// File is a raw file blob as supplied by the picker or a directory load.
// Data is never modified once the file has been loaded.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
	Path     string // source path on disk, informational only
}

// IsImage reports whether the file belongs to the image/* MIME family
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.MIMEType), "image/")
}

// Size returns the file size in bytes
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Extension returns the suffix of the original file name without the dot,
// falling back to the default extension when the name has none.
func (f File) Extension() string {
	ext := strings.TrimPrefix(filepath.Ext(f.Name), ".")
	if ext == "" {
		return constants.DefaultExtension
	}
	return ext
}

// Preview describes the preview resource created for a bound file.
type Preview struct {
	ID     string
	Format string
	Width  int
	Height int
	Size   int64
}

// Dimensions renders the pixel size, or an empty string when unknown
func (p Preview) Dimensions() string {
	if p.Width == 0 || p.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// Entry is one (file name, bytes) pair of an export manifest.
type Entry struct {
	Name   string
	Data   []byte
	SlotID string
}
