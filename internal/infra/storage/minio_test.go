package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers just enough of the S3 API for bucket checks and single-part puts.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  bool
	objects map[string]string // path -> content type
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	io.Copy(io.Discard, r.Body)

	switch r.Method {
	case http.MethodHead:
		if !f.bucket {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		// bucket-level requests arrive as /scans/
		if strings.TrimSuffix(r.URL.Path, "/") == "/scans" {
			f.bucket = true
			w.WriteHeader(http.StatusOK)
			return
		}
		f.objects[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T, bucketExists bool) (*fakeS3, string) {
	t.Helper()
	fake := &fakeS3{bucket: bucketExists, objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return fake, u.Host
}

func TestMinio_PublishReturnsObjectURL(t *testing.T) {
	fake, host := newFakeS3(t, true)
	ctx := context.Background()

	store, err := NewMinio(ctx, host, "us-east-1", "scans", "key", "secret", false)
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpeg"), 0o644))

	u, err := store.Publish(ctx, local, "2025/01/02/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://"+host+"/scans/2025/01/02/a.jpg", u)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "image/jpeg", fake.objects["/scans/2025/01/02/a.jpg"])
}

func TestMinio_CreatesMissingBucket(t *testing.T) {
	fake, host := newFakeS3(t, false)

	store, err := NewMinio(context.Background(), host, "us-east-1", "scans", "key", "secret", false)
	require.NoError(t, err)

	fake.mu.Lock()
	assert.True(t, fake.bucket)
	fake.mu.Unlock()
	assert.NoError(t, store.Check(context.Background()))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType("x.JPG"))
	assert.Equal(t, "image/jpeg", contentType("x.jpeg"))
	assert.Equal(t, "image/png", contentType("x.png"))
	assert.Equal(t, "image/heic", contentType("x.heic"))
	assert.Equal(t, "application/octet-stream", contentType("x"))
}
