// Package ingest turns paths on disk into the raw file blobs the board works on.
package ingest

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/models"
)

// extensions the stdlib mime table does not know on every platform
var extraTypes = map[string]string{
	".heic": "image/heic",
	".heif": "image/heif",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".avif": "image/avif",
}

const sniffLen = 512

// Load reads every path in order. Directories are expanded one level deep,
// sorted by name, with hidden entries skipped. Files that cannot be read are
// reported in the returned error slice and the rest are still loaded.
func Load(ctx context.Context, paths ...string) ([]models.File, []error) {
	var files []models.File
	var errs []error

	for _, p := range expand(paths, &errs) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		f, err := LoadFile(p)
		if err != nil {
			logger.Warn("Failed to read file", "path", p, "error", err)
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}

	logger.Debug("Loaded files", "paths", len(paths), "files", len(files), "errors", len(errs))
	return files, errs
}

// LoadFile reads a single file and detects its MIME type
func LoadFile(path string) (models.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return models.File{
		Name:     name,
		MIMEType: DetectMIME(name, data),
		Data:     data,
		Path:     path,
	}, nil
}

// DetectMIME resolves the MIME type from the file extension, falling back to
// content sniffing when the extension is unknown.
func DetectMIME(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extraTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	t, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return t
}

func expand(paths []string, errs *[]error) []string {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("failed to stat %s: %w", p, err))
			continue
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("failed to list %s: %w", p, err))
			continue
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, filepath.Join(p, name))
		}
	}
	return out
}
