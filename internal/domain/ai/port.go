package ai

import (
	"context"
	"encoding/base64"
)

// Image is an inline image payload sent with a generation request.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL renders the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// Request is a single multimodal generation call: instruction text, one image
// and the schema the output must conform to.
type Request struct {
	Prompt string
	Image  Image
	Schema *Schema
}

// Generator is a vision-capable model provider constrained to JSON output.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Name is a short provider label used in logs and metrics.
	Name() string
}
