package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appuploads "github.com/bryanwahyu/ecoscan/internal/application/uploads"
	"github.com/bryanwahyu/ecoscan/internal/domain/uploads"
	"github.com/bryanwahyu/ecoscan/internal/middleware"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

type Options struct {
	UploadDir      string
	MaxUploadBytes int64
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter // nil = disabled
	Checkers       map[string]middleware.HealthChecker
}

type Router struct {
	uploadsSvc *appuploads.Service
	opts       Options
	logger     *zap.Logger
}

func NewRouter(uploadsSvc *appuploads.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{uploadsSvc: uploadsSvc, opts: opts, logger: logger}
	mux := chi.NewRouter()

	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	mux.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimit(opts.RateLimiter))
	}

	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler(opts.Checkers))

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.HealthHandler)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})
	mux.Get("/uploads/{name}", r.handleUpload)

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeError(w, http.StatusBadRequest, "file is required")
		case errors.Is(err, uploads.ErrTooLarge), errors.As(err, &tooBig):
			writeError(w, http.StatusRequestEntityTooLarge, uploads.ErrTooLarge.Error())
		case errors.Is(err, uploads.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing image: %v", err))
		}
	}
}

// POST /api/analyze
// Multipart form with the image in field "file".
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes+multipartOverhead)
	file, header, err := req.FormFile("file")
	if err != nil {
		return err
	}
	defer file.Close()
	defer req.MultipartForm.RemoveAll()

	ext, err := middleware.ImageExtension(header.Filename)
	if err != nil {
		return err
	}

	result, err := r.uploadsSvc.Analyze(req.Context(), appuploads.AnalyzeCommand{Body: file, Ext: ext})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /uploads/{name}
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	if err := middleware.ValidateUploadName(name); err != nil {
		http.NotFound(w, req)
		return
	}
	http.ServeFile(w, req, filepath.Join(r.opts.UploadDir, name))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
