package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/gym_site/internal/logging"
)

type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) error
}

type Result struct {
	URL          string `json:"url"`
	ResourceType string `json:"resourceType"`
}

type Service struct {
	Store     ObjectStore
	PublicURL string
	Limits    Limits
	now       func() time.Time
}

func NewService(store ObjectStore, publicURL string, limits Limits) *Service {
	return &Service{
		Store:     store,
		PublicURL: strings.TrimRight(publicURL, "/"),
		Limits:    limits,
		now:       time.Now,
	}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Upload gates the file on its sniffed type and size, then stores it under a
// random key. Only the returned URL is meant to be persisted.
func (s *Service) Upload(ctx context.Context, filename string, size int64, file io.ReadSeeker) (*Result, error) {
	l := logging.FromContext(ctx).With("svc", "media.upload", "filename", filename, "size", size)

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read file: %w", err)
	}

	detected, err := Detect(head[:n])
	if err != nil {
		l.Warn("upload_rejected", "status", 400, "error", err)
		return nil, err
	}
	if err := s.Limits.Check(detected, size); err != nil {
		l.Warn("upload_rejected", "status", 400, "error", err)
		return nil, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind file: %w", err)
	}

	key := s.objectKey(detected.Ext)
	if err := s.Store.PutObject(ctx, key, detected.ContentType, file, size); err != nil {
		l.Error("upload_error", "status", 500, "reason", "object store error", "error", err)
		return nil, err
	}

	l.Info("upload_stored", "key", key, "content_type", detected.ContentType)
	return &Result{URL: s.PublicURL + "/" + key, ResourceType: detected.ResourceType}, nil
}

func (s *Service) objectKey(ext string) string {
	now := s.clock().UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
