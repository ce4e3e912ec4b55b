package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ecoscan/internal/domain/uploads"
)

// PublicPrefix is the URL path under which stored uploads are served.
const PublicPrefix = "/uploads/"

// Local stores uploads as flat files in one directory.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal pastikan directory upload ada
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

// Save copies r into <dir>/<uuid><ext>. When more than maxBytes arrive the
// partial file is removed and ErrTooLarge returned.
func (l *Local) Save(ctx context.Context, r io.Reader, ext string, maxBytes int64) (uploads.StoredImage, error) {
	if err := ctx.Err(); err != nil {
		return uploads.StoredImage{}, err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(l.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return uploads.StoredImage{}, fmt.Errorf("create upload: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return uploads.StoredImage{}, fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return uploads.StoredImage{}, fmt.Errorf("close upload: %w", closeErr)
	case maxBytes > 0 && n > maxBytes:
		os.Remove(path)
		return uploads.StoredImage{}, uploads.ErrTooLarge
	}
	return uploads.StoredImage{Name: name, Path: path, Size: n}, nil
}

// URL returns the public URL of a stored upload.
func (l *Local) URL(name string) string {
	return l.baseURL + PublicPrefix + name
}

// Check verifies the upload directory is writable.
func (l *Local) Check(ctx context.Context) error {
	f, err := os.CreateTemp(l.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
