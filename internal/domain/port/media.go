package port

import (
	"context"
	"io"
)

// MediaStore persists rendered media and returns a stable URL for it.
type MediaStore interface {
	UploadMedia(ctx context.Context, objectKey, contentType string, r io.Reader, size int64) (string, error)
}
