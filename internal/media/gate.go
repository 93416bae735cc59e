package media

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmpty           = errors.New("file is empty")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file is too large")
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"

	DefaultMaxImageSize int64 = 10 << 20
	DefaultMaxVideoSize int64 = 100 << 20

	sniffLen = 512
)

type kind struct {
	ext      string
	resource string
}

var allowedTypes = map[string]kind{
	"image/jpeg": {ext: ".jpg", resource: ResourceImage},
	"image/png":  {ext: ".png", resource: ResourceImage},
	"image/webp": {ext: ".webp", resource: ResourceImage},
	"image/gif":  {ext: ".gif", resource: ResourceImage},
	"video/mp4":  {ext: ".mp4", resource: ResourceVideo},
	"video/webm": {ext: ".webm", resource: ResourceVideo},
}

type Limits struct {
	MaxImageSize int64
	MaxVideoSize int64
}

func (l Limits) maxSize(resource string) int64 {
	if resource == ResourceVideo {
		if l.MaxVideoSize > 0 {
			return l.MaxVideoSize
		}
		return DefaultMaxVideoSize
	}
	if l.MaxImageSize > 0 {
		return l.MaxImageSize
	}
	return DefaultMaxImageSize
}

type Detected struct {
	ContentType  string
	Ext          string
	ResourceType string
}

// Detect sniffs the content type from the leading bytes of a file. The
// client supplied name and Content-Type are never trusted.
func Detect(head []byte) (Detected, error) {
	if len(head) == 0 {
		return Detected{}, ErrEmpty
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	ct := http.DetectContentType(head)
	k, ok := allowedTypes[ct]
	if !ok {
		return Detected{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return Detected{ContentType: ct, Ext: k.ext, ResourceType: k.resource}, nil
}

func (l Limits) Check(d Detected, size int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if limit := l.maxSize(d.ResourceType); size > limit {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, d.ResourceType, limit)
	}
	return nil
}
