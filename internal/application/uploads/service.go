package uploads

import (
	"context"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecoscan/internal/application"
	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
	domain "github.com/bryanwahyu/ecoscan/internal/domain/uploads"
)

// Analyzer is the analysis engine as seen by the gateway.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath string) recycling.Outcome
}

// Service implements the upload-and-analyze use case.
// Service is safe for concurrent use.
type Service struct {
	Store          domain.Store
	Publisher      domain.Publisher // optional mirror, nil kalau MinIO tidak dipakai
	Engine         Analyzer
	Clock          application.Clock
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// AnalyzeCommand carries one uploaded image. Ext is the validated,
// lowercased extension including the dot.
type AnalyzeCommand struct {
	Body io.Reader
	Ext  string
}

// Analyze stores the upload, analyzes it and returns the verdict with
// scannedImageUrl pointing at the public copy. Only storage problems are
// returned as errors; analysis failures come back as the fallback result.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (recycling.AnalysisResult, error) {
	img, err := s.Store.Save(ctx, cmd.Body, cmd.Ext, s.MaxUploadBytes)
	if err != nil {
		return recycling.AnalysisResult{}, err
	}
	s.logger().Info("upload stored", zap.String("name", img.Name), zap.Int64("bytes", img.Size))

	// analysis jalan terus walaupun client disconnect
	bg := context.WithoutCancel(ctx)
	out := s.Engine.Analyze(bg, img.Path)

	result := out.Result
	result.ScannedImageURL = s.publicURL(bg, img)
	return result, nil
}

func (s *Service) publicURL(ctx context.Context, img domain.StoredImage) string {
	local := s.Store.URL(img.Name)
	if s.Publisher == nil {
		return local
	}
	key := path.Join(s.now().UTC().Format("2006/01/02"), img.Name)
	u, err := s.Publisher.Publish(ctx, img.Path, key)
	if err != nil {
		s.logger().Warn("mirror upload failed, serving local copy", zap.String("key", key), zap.Error(err))
		return local
	}
	return u
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
