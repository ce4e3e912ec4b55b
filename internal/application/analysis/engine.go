package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecoscan/internal/domain/ai"
	"github.com/bryanwahyu/ecoscan/internal/domain/recycling"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/prompt"
	"github.com/bryanwahyu/ecoscan/internal/infra/imaging"
)

// imageMIMEType is the tag sent with every inline image.
const imageMIMEType = "image/jpeg"

var errEmptyImage = errors.New("image file is empty")

// Recorder receives one observation per analysis.
type Recorder interface {
	ObserveAnalysis(provider string, outcome recycling.OutcomeKind, elapsed time.Duration)
}

// Engine turns an image on local disk into a recyclability verdict.
// Engine holds no per-request state and is safe for concurrent use.
type Engine struct {
	Generator     ai.Generator
	Normalizer    *imaging.Normalizer
	MaxImageBytes int64
	Logger        *zap.Logger
	Metrics       Recorder
}

// Analyze runs normalize → encode → generate → decode once, without retries.
// It never fails: any error yields the fallback variant of the Outcome.
func (e *Engine) Analyze(ctx context.Context, imagePath string) (out recycling.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = recycling.FellBack(imagePath, fmt.Errorf("analysis panicked: %v", r))
		}
		e.observe(imagePath, out, time.Since(start))
	}()

	result, err := e.run(ctx, imagePath)
	if err != nil {
		return recycling.FellBack(imagePath, err)
	}
	result.ScannedImageURL = imagePath
	return recycling.Succeeded(result)
}

func (e *Engine) run(ctx context.Context, imagePath string) (recycling.AnalysisResult, error) {
	img, err := e.load(imagePath)
	if err != nil {
		return recycling.AnalysisResult{}, err
	}

	text, err := e.Generator.Generate(ctx, ai.Request{
		Prompt: prompt.RecyclingPrompt(),
		Image:  img,
		Schema: prompt.ResultSchema(),
	})
	if err != nil {
		return recycling.AnalysisResult{}, err
	}

	result, err := recycling.DecodeResult(text)
	if err != nil {
		return recycling.AnalysisResult{}, err
	}
	if len(result.AlternativeOptions) != recycling.ExpectedListLen || len(result.RecyclingTips) != recycling.ExpectedListLen {
		e.logger().Warn("unexpected list length in model response",
			zap.Int("alternative_options", len(result.AlternativeOptions)),
			zap.Int("recycling_tips", len(result.RecyclingTips)),
		)
	}
	return result, nil
}

// load normalizes the image and reads it into memory. The resized copy, if
// any, is gone when load returns.
func (e *Engine) load(imagePath string) (ai.Image, error) {
	norm := e.normalizer().Normalize(imagePath, e.maxImageBytes())
	defer norm.Release()

	data, err := os.ReadFile(norm.Path)
	if err != nil {
		return ai.Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return ai.Image{}, errEmptyImage
	}
	return ai.Image{MIMEType: imageMIMEType, Data: data}, nil
}

func (e *Engine) observe(imagePath string, out recycling.Outcome, elapsed time.Duration) {
	provider := "none"
	if e.Generator != nil {
		provider = e.Generator.Name()
	}
	if e.Metrics != nil {
		e.Metrics.ObserveAnalysis(provider, out.Kind, elapsed)
	}

	fields := []zap.Field{
		zap.String("provider", provider),
		zap.String("image", imagePath),
		zap.String("outcome", string(out.Kind)),
		zap.Duration("elapsed", elapsed),
	}
	if out.Fallback() {
		e.logger().Warn("analysis fell back", append(fields, zap.Error(out.Cause))...)
		return
	}
	e.logger().Info("analysis finished", append(fields,
		zap.String("item", out.Result.ItemName),
		zap.Bool("recyclable", out.Result.Recyclable),
	)...)
}

func (e *Engine) normalizer() *imaging.Normalizer {
	if e.Normalizer == nil {
		return imaging.NewNormalizer(e.logger())
	}
	return e.Normalizer
}

func (e *Engine) maxImageBytes() int64 {
	if e.MaxImageBytes <= 0 {
		return imaging.DefaultMaxBytes
	}
	return e.MaxImageBytes
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
