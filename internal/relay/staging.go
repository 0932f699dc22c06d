package relay

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StagedFile is the transient on-disk copy of one uploaded file. It must be
// removed after the request completes, regardless of outcome.
type StagedFile struct {
	// Name is the client-supplied filename, used verbatim as the object key.
	Name string
	// Size is the staged byte count.
	Size int64
	// ContentType is the MIME type declared by the multipart part.
	ContentType string

	path string
}

// Stage copies one multipart part into dir under an opaque temporary name and
// returns its handle. The caller owns the staged file and must call Remove.
func Stage(dir string, src multipart.File, header *multipart.FileHeader) (*StagedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString())
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write staged file: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &StagedFile{
		Name:        header.Filename,
		Size:        size,
		ContentType: contentType,
		path:        path,
	}, nil
}

// Open returns a reader over the staged bytes, verifying the file still exists
// on disk first.
func (f *StagedFile) Open() (*os.File, error) {
	if _, err := os.Stat(f.path); err != nil {
		return nil, fmt.Errorf("uploaded file not found on disk: %w", err)
	}
	return os.Open(f.path)
}

// Remove deletes the staged file. Failures are logged and swallowed so cleanup
// can never mask the primary result of a request; an already-missing file is
// not an error.
func (f *StagedFile) Remove() {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("relay: error cleaning up temp file %s: %v", f.path, err)
	}
}
