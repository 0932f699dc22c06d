package relay

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageTestFile(t *testing.T, dir, filename string, content []byte) *StagedFile {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	src, header, err := req.FormFile("file")
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	staged, err := Stage(dir, src, header)
	require.NoError(t, err)
	return staged
}

func TestStageWritesOpaqueTempName(t *testing.T) {
	dir := t.TempDir()
	staged := stageTestFile(t, dir, "movie.mp4", []byte("abcdef"))

	assert.Equal(t, "movie.mp4", staged.Name)
	assert.Equal(t, int64(6), staged.Size)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Staged names never leak the original filename.
	assert.NotEqual(t, "movie.mp4", entries[0].Name())

	src, err := staged.Open()
	require.NoError(t, err)
	defer src.Close()

	got := make([]byte, 6)
	_, err = src.Read(got)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
}

func TestRemoveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	staged := stageTestFile(t, dir, "x.png", []byte("png"))

	staged.Remove()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A second Remove (file already gone) must not panic or log spuriously.
	staged.Remove()
}

func TestOpenAfterRemoveFails(t *testing.T) {
	dir := t.TempDir()
	staged := stageTestFile(t, dir, "x.png", []byte("png"))
	staged.Remove()

	_, err := staged.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on disk")
}

func TestStageCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	staged := stageTestFile(t, dir, "x.png", []byte("png"))
	defer staged.Remove()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
