package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Params are the explicit generation settings for one call.
type Params struct {
	Model       string
	Temperature float32
	// MaxOutputTokens caps the response length; zero leaves the provider default.
	MaxOutputTokens int32
}

// Client is an abstraction over LLM providers
type Client interface {
	// Complete generates text for prompt with the given model and temperature.
	Complete(ctx context.Context, prompt string, params Params) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates the Gemini-backed LLM client
func NewClient(ctx context.Context, apiKey string) (Client, error) {
	return NewGeminiClient(ctx, apiKey)
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &APICallError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiClient{client: client}, nil
}

// Complete generates text content with the model named in params.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if params.Model == "" {
		return "", &APICallError{Message: "no model configured"}
	}

	model := c.client.GenerativeModel(params.Model)
	model.SetTemperature(params.Temperature)
	if params.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(params.MaxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &APICallError{Message: "failed to generate content", Cause: err}
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &APICallError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &APICallError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &APICallError{Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string, params Params) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	return f(ctx, prompt, params)
}

// Close is a no-op.
func (f ClientFunc) Close() error { return nil }

// ErrUnavailable is returned by Unavailable for every call.
var ErrUnavailable = errors.New("text generation unavailable")

// Unavailable is a Client that always fails. It stands in when no API key is configured,
// so every call site takes its deterministic fallback path.
var Unavailable Client = ClientFunc(func(context.Context, string, Params) (string, error) {
	return "", &APICallError{Message: "no API key configured", Cause: ErrUnavailable}
})
