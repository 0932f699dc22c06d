package client

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// File is one upload candidate: name, declared size and type, and the byte
// stream. It is owned by the Uploader for the lifetime of one attempt.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// Types the platform mime database does not know about but the uploader
// accepts. Checked before mime.TypeByExtension so behavior does not depend on
// the host's mime setup.
var extTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// FromPath opens path and builds a File from its metadata, inferring the MIME
// type from the extension. The returned closer must be closed after the
// upload attempt finishes.
func FromPath(path string) (File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return File{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: TypeByName(path),
		Body:        f,
	}, f, nil
}

// TypeByName infers a MIME type from a filename, falling back to
// application/octet-stream.
func TypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
