package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/bryanwahyu/ecoscan/internal/domain/ai"
)

const DefaultModel = "gemini-2.0-flash"

type Client struct {
	models *genai.Models
	Model  string
}

// Options tune the underlying HTTP client. Zero values keep library defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(ctx context.Context, apiKey, model string, opts Options) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: cli.Models, Model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, in ai.Request) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(in.Prompt),
			genai.NewPartFromBytes(in.Image.Data, in.Image.MIMEType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if in.Schema != nil {
		config.ResponseSchema = toSchema(in.Schema)
	}

	resp, err := c.models.GenerateContent(ctx, c.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

func toSchema(s *ai.Schema) *genai.Schema {
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case ai.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
		out.PropertyOrdering = append([]string(nil), s.Order...)
		out.Required = append([]string(nil), s.Required...)
	case ai.TypeArray:
		out.Type = genai.TypeArray
		if s.Items != nil {
			out.Items = toSchema(s.Items)
		}
	case ai.TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	return out
}
