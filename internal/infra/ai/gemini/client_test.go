package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/bryanwahyu/ecoscan/internal/domain/ai"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/prompt"
)

func newTestClient(t *testing.T, status int, body string, seen *string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultModel+":generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if seen != nil {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*seen = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-key", "", Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func testRequest() ai.Request {
	return ai.Request{
		Prompt: "identify",
		Image:  ai.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
		Schema: prompt.ResultSchema(),
	}
}

func TestClient_Generate(t *testing.T) {
	var seen string
	c := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"itemName\":\"Aluminum Can\"}"}]}}]}`, &seen)

	out, err := c.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"itemName":"Aluminum Can"}`, out)

	assert.Contains(t, seen, "application/json")
	assert.Contains(t, seen, "responseSchema")
	assert.Contains(t, seen, "inlineData")
	assert.Contains(t, seen, "image/jpeg")
	assert.Contains(t, seen, "/9j/")
	assert.Contains(t, seen, "identify")
	assert.Contains(t, seen, "recyclingTips")
}

func TestClient_Generate_QuotaExceeded(t *testing.T) {
	c := newTestClient(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`, nil)

	_, err := c.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestClient_Generate_BadRequest(t *testing.T) {
	c := newTestClient(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"Invalid image","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := c.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"candidates":[]}`, nil)

	_, err := c.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestToSchema(t *testing.T) {
	s := toSchema(prompt.ResultSchema())

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, s.Required, s.PropertyOrdering)
	assert.Equal(t, genai.TypeBoolean, s.Properties["recyclable"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["recyclingCode"].Type)

	opts := s.Properties["alternativeOptions"]
	require.Equal(t, genai.TypeArray, opts.Type)
	require.NotNil(t, opts.Items)
	assert.Equal(t, []string{"option"}, opts.Items.Required)
}
