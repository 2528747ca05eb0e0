package captions

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator produces text for a system instruction and a user prompt
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	ModelName() string
}

// GeneratorConfig selects and configures a text provider
type GeneratorConfig struct {
	Provider     string // openai or cohere
	OpenAIAPIKey string
	OpenAIModel  string
	CohereAPIKey string
	CohereModel  string
}

// NewGenerator returns the configured hosted generator
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case "cohere":
		if cfg.CohereAPIKey == "" {
			return nil, errors.New("COHERE_API_KEY is required for the cohere text provider")
		}
		return NewCohereGenerator(cfg.CohereAPIKey, cfg.CohereModel), nil
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai text provider")
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.Provider)
	}
}

// OpenAIGenerator uses OpenAI chat completions. Any OpenAI-compatible
// endpoint works through option.WithBaseURL.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for model
func NewOpenAIGenerator(apiKey, model string, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// ModelName implements Generator
func (g *OpenAIGenerator) ModelName() string { return g.model }

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    g.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CohereGenerator uses the Cohere chat API
type CohereGenerator struct {
	client *cohereclient.Client
	model  string
}

// NewCohereGenerator creates a generator for model
func NewCohereGenerator(apiKey, model string) *CohereGenerator {
	// Force HTTP/1.1 to avoid HTTP/2 protocol errors
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereGenerator{client: client, model: model}
}

// ModelName implements Generator
func (g *CohereGenerator) ModelName() string { return g.model }

// Generate implements Generator
func (g *CohereGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := &cohere.ChatRequest{Message: prompt}
	if g.model != "" {
		req.Model = cohere.String(g.model)
	}
	if system != "" {
		req.Preamble = cohere.String(system)
	}

	resp, err := g.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return strings.TrimSpace(resp.Text), nil
}
