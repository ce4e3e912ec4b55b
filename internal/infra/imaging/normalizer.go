package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxBytes keeps inline image payloads under typical provider limits.
	DefaultMaxBytes int64 = 4 * 1024 * 1024

	jpegQuality = 85
	maxAttempts = 4
	// maxPixels caps the decoded raster; a small compressed file can declare
	// dimensions that would not fit in memory.
	maxPixels = 50_000_000
)

var errTooManyPixels = errors.New("image dimensions exceed decode limit")

// Normalizer shrinks oversized images so they fit a byte ceiling.
// It is safe for concurrent use.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger.With(zap.String("component", "normalizer"))}
}

// Normalized is the image to send downstream. When Temporary is set the file
// was created by Normalize and is owned by the caller until Release.
type Normalized struct {
	Path      string
	Temporary bool

	logger *zap.Logger
	once   sync.Once
}

// Release deletes the temporary file, if any. It is idempotent and never
// fails; a deletion error is only logged.
func (n *Normalized) Release() {
	if n == nil || !n.Temporary {
		return
	}
	n.once.Do(func() {
		if err := os.Remove(n.Path); err != nil && !os.IsNotExist(err) {
			n.logger.Warn("remove resized image", zap.String("path", n.Path), zap.Error(err))
		}
	})
}

// Normalize returns path unchanged when the file is at most maxBytes.
// Otherwise it writes a scaled JPEG next to the original and returns that.
// Any failure degrades to the original path.
func (n *Normalizer) Normalize(path string, maxBytes int64) *Normalized {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	original := &Normalized{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		n.logger.Warn("stat image, using original", zap.String("path", path), zap.Error(err))
		return original
	}
	if info.Size() <= maxBytes {
		return original
	}

	out, err := n.resize(path, info.Size(), maxBytes)
	if err != nil {
		n.logger.Warn("resize image, using original", zap.String("path", path), zap.Error(err))
		return original
	}
	return &Normalized{Path: out, Temporary: true, logger: n.logger}
}

func (n *Normalizer) resize(path string, size, maxBytes int64) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return "", fmt.Errorf("%w: %dx%d", errTooManyPixels, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if format == "jpeg" {
		img = applyOrientation(img, orientation(data))
	}

	bounds := img.Bounds()
	// byte density is assumed uniform, so the linear factor is the square root
	scale := math.Sqrt(float64(maxBytes) / float64(size))

	var encoded []byte
	var w, h int
	for attempt := 0; attempt < maxAttempts; attempt++ {
		w = max(1, int(float64(bounds.Dx())*scale))
		h = max(1, int(float64(bounds.Dy())*scale))
		encoded, err = encodeScaled(img, w, h)
		if err != nil {
			return "", err
		}
		if int64(len(encoded)) <= maxBytes {
			break
		}
		scale *= math.Sqrt(float64(maxBytes)/float64(len(encoded))) * 0.95
	}

	tmp := fmt.Sprintf("%s_resized-%s.jpg", path, uuid.NewString())
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write resized image: %w", err)
	}

	n.logger.Info("image resized",
		zap.String("path", path),
		zap.Int64("original_bytes", size),
		zap.Int("resized_bytes", len(encoded)),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Bool("within_limit", int64(len(encoded)) <= maxBytes),
	)
	return tmp, nil
}

func encodeScaled(src image.Image, w, h int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; flatten transparent pixels onto white
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
