package stub

import (
	"context"

	"github.com/bryanwahyu/ecoscan/internal/domain/ai"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/prompt"
)

// Client is a deterministic, no-network generator for CI and local runs.
// It answers every request with the prompt's worked example.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Name() string { return "stub" }

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt.ExampleJSON(), nil
}
