package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"
)

type Config struct {
	Server  Server  `yaml:"server"`
	AI      AI      `yaml:"ai"`
	Uploads Uploads `yaml:"uploads"`
	Minio   Minio   `yaml:"minio"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Port          int           `yaml:"port" validate:"min=1,max=65535"`
	PublicBaseURL string        `yaml:"publicBaseURL" validate:"omitempty,url"`
	ReadTimeout   time.Duration `yaml:"readTimeout" validate:"gt=0"`
	WriteTimeout  time.Duration `yaml:"writeTimeout" validate:"gt=0"`
	RateLimit     RateLimit     `yaml:"rateLimit"`
}

type RateLimit struct {
	Enabled   bool    `yaml:"enabled"`
	PerSecond float64 `yaml:"perSecond" validate:"required_if=Enabled true,gte=0"`
	Burst     int     `yaml:"burst" validate:"required_if=Enabled true,gte=0"`
}

type AI struct {
	Provider      string        `yaml:"provider" validate:"oneof=gemini openai stub"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"baseURL" validate:"omitempty,url"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxImageBytes int64         `yaml:"maxImageBytes" validate:"gt=0"`
	// APIKey hanya dari environment, tidak pernah dari file
	APIKey string `yaml:"-"`
}

type Uploads struct {
	Dir            string `yaml:"dir" validate:"required"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes" validate:"gt=0"`
}

type Minio struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName" validate:"required_if=Enabled true"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default values, dipakai kalau config.yaml tidak ada
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit:    RateLimit{PerSecond: 1, Burst: 5},
		},
		AI: AI{
			Provider:      ProviderGemini,
			Timeout:       60 * time.Second,
			MaxImageBytes: 4 * 1024 * 1024,
		},
		Uploads: Uploads{
			Dir:            "uploads",
			MaxUploadBytes: 20 * 1024 * 1024,
		},
		Minio: Minio{Region: "us-east-1"},
		Log:   Log{Level: "info"},
	}
}

// Load baca file config.yaml, override dari env, lalu validasi
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.Uploads.Dir = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.Server.PublicBaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}

	switch c.AI.Provider {
	case ProviderGemini:
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	case ProviderOpenAI:
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the provider has a credential.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.AI.Provider != ProviderStub && c.AI.APIKey == "" {
		return fmt.Errorf("invalid config: %s_API_KEY is not set", strings.ToUpper(c.AI.Provider))
	}
	return nil
}

// NewLogger builds the zap logger described by the log section.
func (l Log) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
