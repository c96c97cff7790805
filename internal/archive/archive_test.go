package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/dragx/internal/models"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method, "entry %s", f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(b)
	}
	return out
}

func TestWrite(t *testing.T) {
	entries := []models.Entry{
		{Name: "lot-1.jpg", Data: []byte("first")},
		{Name: "lot-2_1.png", Data: []byte("second")},
	}

	var buf bytes.Buffer
	res, err := Write(context.Background(), &buf, entries, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, int64(len("first")+len("second")), res.Bytes)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Renamed)
	assert.Equal(t, map[string]string{
		"lot-1.jpg":   "first",
		"lot-2_1.png": "second",
	}, readZip(t, buf.Bytes()))
}

func TestWriteKeepsCollidingEntries(t *testing.T) {
	entries := []models.Entry{
		{Name: "5.jpg", Data: []byte("a")},
		{Name: "5.jpg", Data: []byte("b")},
	}

	var buf bytes.Buffer
	res, err := Write(context.Background(), &buf, entries, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"5~2.jpg": "5.jpg"}, res.Renamed)
	assert.Equal(t, map[string]string{"5.jpg": "a", "5~2.jpg": "b"}, readZip(t, buf.Bytes()))
}

func TestWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, io.Discard, []models.Entry{{Name: "1.jpg", Data: []byte("x")}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no collisions",
			input: []string{"1.jpg", "2.jpg"},
			want:  []string{"1.jpg", "2.jpg"},
		},
		{
			name:  "three way collision",
			input: []string{"3.jpg", "3.jpg", "3.jpg"},
			want:  []string{"3.jpg", "3~2.jpg", "3~3.jpg"},
		},
		{
			name:  "does not steal a later name",
			input: []string{"3.jpg", "3.jpg", "3~2.jpg"},
			want:  []string{"3.jpg", "3~3.jpg", "3~2.jpg"},
		},
		{
			name:  "name without extension",
			input: []string{"lot", "lot"},
			want:  []string{"lot", "lot~2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]models.Entry, len(tt.input))
			for i, n := range tt.input {
				entries[i] = models.Entry{Name: n}
			}
			assert.Equal(t, tt.want, Deduplicate(entries))
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photos_organisees.zip")

	res, err := WriteFile(context.Background(), path, []models.Entry{{Name: "1.jpg", Data: []byte("x")}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1.jpg": "x"}, readZip(t, data))

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 1, "temporary files should not be left behind")
}

func TestWriteFileCancelledLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WriteFile(ctx, path, []models.Entry{{Name: "1.jpg", Data: []byte("x")}}, Options{})
	require.ErrorIs(t, err, context.Canceled)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}
