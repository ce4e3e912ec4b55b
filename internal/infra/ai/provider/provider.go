// Package provider picks the generator adapter named in the configuration.
package provider

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/ecoscan/internal/config"
	"github.com/bryanwahyu/ecoscan/internal/domain/ai"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/gemini"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/openai"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/stub"
)

func New(ctx context.Context, cfg config.AI) (ai.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		cli, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model, gemini.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return cli, nil
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.APIKey, cfg.Model, openai.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}), nil
	case config.ProviderStub:
		return stub.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
