package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType rejects a file whose MIME type is outside the
	// profile's allow-list. Raised before any transfer starts.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileTooLarge rejects a file over the profile's size cap.
	ErrFileTooLarge = errors.New("file too large")
)

// Profile parameterizes the uploader for one kind of content: which MIME
// types are accepted and how large the file may be. The image and video
// uploaders of the admin panel differ only in these values.
type Profile struct {
	Name         string
	AllowedTypes []string
	MaxBytes     int64 // 0 means no limit
}

var (
	// ImageProfile accepts the admin panel's image formats, capped at 5 MiB.
	ImageProfile = Profile{
		Name: "image",
		AllowedTypes: []string{
			"image/png", "image/jpeg", "image/gif", "image/webp",
		},
		MaxBytes: 5 << 20,
	}

	// VideoProfile accepts the lecture video formats with no size cap.
	VideoProfile = Profile{
		Name: "video",
		AllowedTypes: []string{
			"video/mp4", "video/quicktime", "video/x-msvideo", "video/x-matroska",
		},
	}
)

// Validate checks f against the profile. A non-nil error means the transfer
// must not start; the uploader's phase is left untouched.
func (p Profile) Validate(f File) error {
	allowed := false
	for _, t := range p.AllowedTypes {
		if f.ContentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s is not an allowed %s type", ErrUnsupportedType, f.ContentType, p.Name)
	}
	if p.MaxBytes > 0 && f.Size > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, f.Size, p.MaxBytes)
	}
	return nil
}
