// Package preview issues and tracks the preview handles of bound files.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/julianstephens/dragx/internal/models"
)

var ErrEmptyFile = errors.New("file is empty")

// Registry creates previews from image headers and keeps track of the ones
// still alive. It satisfies board.Previewer.
type Registry struct {
	live map[string]models.Preview
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[string]models.Preview)}
}

// Create reads the image header of f and registers a new preview handle.
// Formats without a registered decoder (HEIC, AVIF, ...) still get a handle
// carrying the size and the MIME subtype; a corrupt header of a known format
// is an error.
func (r *Registry) Create(f models.File) (models.Preview, error) {
	if len(f.Data) == 0 {
		return models.Preview{}, ErrEmptyFile
	}

	p := models.Preview{
		ID:   uuid.NewString(),
		Size: f.Size(),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	switch {
	case err == nil:
		p.Format = format
		p.Width = cfg.Width
		p.Height = cfg.Height
	case errors.Is(err, image.ErrFormat):
		p.Format = subtype(f.MIMEType)
	default:
		return models.Preview{}, fmt.Errorf("unreadable image: %w", err)
	}

	r.live[p.ID] = p
	return p, nil
}

// Release forgets the preview. Releasing an unknown or already released
// preview is a no-op.
func (r *Registry) Release(p models.Preview) {
	delete(r.live, p.ID)
}

// Live returns the number of previews that have not been released
func (r *Registry) Live() int {
	return len(r.live)
}

func subtype(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	return strings.ToLower(strings.TrimSpace(sub))
}
