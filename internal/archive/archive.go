// Package archive writes export manifests as ZIP archives.
package archive

import (
	"archive/zip"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/models"
)

// Options tunes the archive writer. The zero value uses the default
// compression level and the current time for entry timestamps.
type Options struct {
	Level    int
	Modified time.Time
}

// Result summarizes a written archive.
type Result struct {
	RunID   string
	Entries int
	Bytes   int64             // uncompressed payload
	Renamed map[string]string // final name -> name requested by the manifest
}

// Write streams entries into a ZIP archive on w. Entries whose name was
// already used get a "~2", "~3", ... marker before the extension so that no
// photo is silently overwritten. The entries slice is treated as a snapshot
// and never modified.
func Write(ctx context.Context, w io.Writer, entries []models.Entry, opts Options) (Result, error) {
	level := opts.Level
	if level == 0 {
		level = constants.CompressionLevel
	}
	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	res := Result{RunID: uuid.NewString(), Renamed: make(map[string]string)}
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	names := Deduplicate(entries)
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := names[i]
		if name != e.Name {
			res.Renamed[name] = e.Name
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return res, fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", name, err)
		}
		res.Entries++
		res.Bytes += int64(len(e.Data))
	}

	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("failed to finalize archive: %w", err)
	}
	logger.Info("Archive written", "run", res.RunID, "entries", res.Entries, "renamed", len(res.Renamed))
	return res, nil
}

// WriteFile writes the archive to path through a temporary file in the same
// directory, so a failed or cancelled export never leaves a partial archive
// behind and an existing archive is only replaced once the new one is complete.
func WriteFile(ctx context.Context, path string, entries []models.Entry, opts Options) (res Result, err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return res, fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if res, err = Write(ctx, tmp, entries, opts); err != nil {
		return res, err
	}
	if err = tmp.Sync(); err != nil {
		return res, fmt.Errorf("failed to sync archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return res, fmt.Errorf("failed to close archive: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return res, fmt.Errorf("failed to move archive into place: %w", err)
	}
	return res, nil
}

// Deduplicate returns the archive name of each entry. The first occurrence
// of a name is kept; later ones become "name~2.ext", "name~3.ext", ...,
// skipping any candidate that is itself taken.
func Deduplicate(entries []models.Entry) []string {
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Name] = false
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		if !taken[e.Name] {
			taken[e.Name] = true
			out[i] = e.Name
			continue
		}
		ext := filepath.Ext(e.Name)
		stem := strings.TrimSuffix(e.Name, ext)
		for n := 2; ; n++ {
			candidate := stem + constants.CollisionMarker + strconv.Itoa(n) + ext
			if _, exists := taken[candidate]; !exists {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
