package uploads

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecoscan/internal/application"
	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
	domain "github.com/bryanwahyu/ecoscan/internal/domain/uploads"
)

type memStore struct {
	saved   map[string]string
	saveErr error
}

func (m *memStore) Save(_ context.Context, r io.Reader, ext string, _ int64) (domain.StoredImage, error) {
	if m.saveErr != nil {
		return domain.StoredImage{}, m.saveErr
	}
	b, _ := io.ReadAll(r)
	name := "img" + ext
	m.saved[name] = string(b)
	return domain.StoredImage{Name: name, Path: "/data/" + name, Size: int64(len(b))}, nil
}

func (m *memStore) URL(name string) string { return "http://api.test/uploads/" + name }

type fakeEngine struct {
	mu    sync.Mutex
	paths []string
	ctxs  []context.Context
	fail  error
}

func (f *fakeEngine) Analyze(ctx context.Context, imagePath string) recycling.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, imagePath)
	f.ctxs = append(f.ctxs, ctx)
	if f.fail != nil {
		return recycling.FellBack(imagePath, f.fail)
	}
	return recycling.Succeeded(recycling.AnalysisResult{ItemName: "Can", Recyclable: true, ScannedImageURL: imagePath})
}

type fakePublisher struct {
	keys []string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, localPath, key string) (string, error) {
	p.keys = append(p.keys, key)
	if p.err != nil {
		return "", p.err
	}
	return "http://minio.test/scans/" + key, nil
}

func TestService_AnalyzeLocalURL(t *testing.T) {
	store := &memStore{saved: map[string]string{}}
	engine := &fakeEngine{}
	svc := &Service{Store: store, Engine: engine}

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".jpg"})
	require.NoError(t, err)

	assert.Equal(t, "Can", res.ItemName)
	assert.Equal(t, "http://api.test/uploads/img.jpg", res.ScannedImageURL)
	assert.Equal(t, []string{"/data/img.jpg"}, engine.paths)
	assert.Equal(t, "data", store.saved["img.jpg"])
}

func TestService_FallbackStillReturnsResult(t *testing.T) {
	store := &memStore{saved: map[string]string{}}
	svc := &Service{Store: store, Engine: &fakeEngine{fail: errors.New("provider down")}}

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".png"})
	require.NoError(t, err)

	assert.Equal(t, recycling.FallbackItemName, res.ItemName)
	assert.Equal(t, "provider down", res.ErrorDetails)
	assert.Equal(t, "http://api.test/uploads/img.png", res.ScannedImageURL)
}

func TestService_StorageErrorIsReturned(t *testing.T) {
	engine := &fakeEngine{}
	svc := &Service{Store: &memStore{saveErr: domain.ErrTooLarge}, Engine: engine}

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".jpg"})
	assert.ErrorIs(t, err, domain.ErrTooLarge)
	assert.Empty(t, engine.paths)
}

func TestService_AnalysisSurvivesClientCancel(t *testing.T) {
	engine := &fakeEngine{}
	svc := &Service{Store: &memStore{saved: map[string]string{}}, Engine: engine}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := svc.Analyze(ctx, AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".jpg"})
	require.NoError(t, err)

	cancel()
	require.Len(t, engine.ctxs, 1)
	assert.NoError(t, engine.ctxs[0].Err())
}

func TestService_PublisherURLWithDatedKey(t *testing.T) {
	pub := &fakePublisher{}
	svc := &Service{
		Store:     &memStore{saved: map[string]string{}},
		Publisher: pub,
		Engine:    &fakeEngine{},
		Clock:     application.FixedClock(time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)),
	}

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".jpg"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025/03/07/img.jpg"}, pub.keys)
	assert.Equal(t, "http://minio.test/scans/2025/03/07/img.jpg", res.ScannedImageURL)
}

func TestService_PublisherFailureFallsBackToLocalURL(t *testing.T) {
	svc := &Service{
		Store:     &memStore{saved: map[string]string{}},
		Publisher: &fakePublisher{err: errors.New("bucket gone")},
		Engine:    &fakeEngine{},
	}

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{Body: strings.NewReader("data"), Ext: ".jpg"})
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/uploads/img.jpg", res.ScannedImageURL)
}
