// Package relay accepts file uploads over HTTP and forwards them to object
// storage, returning publicly addressable URLs.
package relay

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/adityavivek11/upload-relay/internal/storage"
)

// Service forwards staged uploads to the object store and mints direct-upload
// URLs. It holds no per-request state: each request's staged file is private
// to it.
type Service struct {
	store         storage.ObjectStore
	presignExpiry time.Duration
}

// NewService creates a relay Service backed by store.
func NewService(store storage.ObjectStore, presignExpiry time.Duration) *Service {
	return &Service{store: store, presignExpiry: presignExpiry}
}

// Forward streams a staged file to the bucket under its original filename and
// returns the public URL. The key is the client-supplied name, unsanitized —
// a repeated name overwrites the previous object.
func (s *Service) Forward(ctx context.Context, staged *StagedFile) (string, error) {
	src, err := staged.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	log.Printf("relay: forwarding %q (%d bytes, %s)", staged.Name, staged.Size, staged.ContentType)

	if err := s.store.Put(ctx, staged.Name, src, staged.Size, staged.ContentType); err != nil {
		return "", fmt.Errorf("forward to bucket: %w", err)
	}

	return s.store.PublicURL(staged.Name), nil
}

// PresignPut mints a one-time-use direct-upload URL for filename and returns
// it together with the eventual public URL. The relay never touches the file
// bytes in this mode.
func (s *Service) PresignPut(ctx context.Context, filename string) (presignedURL, publicURL string, err error) {
	presignedURL, err = s.store.PresignedPutURL(ctx, filename, s.presignExpiry)
	if err != nil {
		return "", "", err
	}
	return presignedURL, s.store.PublicURL(filename), nil
}
