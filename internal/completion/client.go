package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Settings are the per-call generation parameters.
type Settings struct {
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

type Config struct {
	BaseURL string
	// Referer and Title are sent as attribution headers.
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// Client sends single-turn prompts to an OpenAI compatible chat endpoint.
type Client struct {
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		referer:    cfg.Referer,
		title:      cfg.Title,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Complete performs exactly one chat completion call and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, prompt string, s Settings) (string, error) {
	if s.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	// go-openai omits a zero temperature, which lets the provider apply
	// its own default.
	temperature := float32(s.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.openAI(s.APIKey).CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   s.MaxTokens,
			Temperature: temperature,
			TopP:        float32(s.TopP),
		},
	)
	if err != nil {
		err = classify(err)
		c.logger.Error("Failed to get completion",
			zap.Error(err),
			zap.String("model", s.Model))
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("Completion returned no choices", zap.String("model", s.Model))
		return "", ErrMalformedResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// openAI builds a client bound to the given key. Keys can differ per request
// so the client is not cached.
func (c *Client) openAI(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &attributionTransport{
			base:    c.httpClient.Transport,
			referer: c.referer,
			title:   c.title,
		},
	}
	return openai.NewClientWithConfig(cfg)
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode)}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &TransportError{Err: err}
}

type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.referer == "" && t.title == "" {
		return base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	if t.referer != "" {
		r.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		r.Header.Set("X-Title", t.title)
	}
	return base.RoundTrip(r)
}
