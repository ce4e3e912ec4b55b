package uploads

import (
	"context"
	"errors"
	"io"
)

var (
	ErrTooLarge        = errors.New("upload exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// StoredImage is an uploaded image persisted on local disk.
type StoredImage struct {
	Name string // <uuid><ext>, unique per upload
	Path string // absolute or working-dir relative path on disk
	Size int64
}

// Store port (interface untuk penyimpanan upload lokal)
type Store interface {
	Save(ctx context.Context, r io.Reader, ext string, maxBytes int64) (StoredImage, error)
	URL(name string) string
}

// Publisher mirrors a stored image somewhere public and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, localPath, key string) (string, error)
}
