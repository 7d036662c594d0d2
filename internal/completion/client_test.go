package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

type capturedRequest struct {
	path    string
	auth    string
	referer string
	title   string
	body    map[string]any
}

func newProvider(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.referer = r.Header.Get("HTTP-Referer")
		captured.title = r.Header.Get("X-Title")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func testSettings() Settings {
	return Settings{
		APIKey:      "sk-test",
		Model:       "mistralai/mistral-7b-instruct:free",
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   500,
	}
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	srv, captured := newProvider(t, http.StatusOK, `{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [
			{"index": 0, "message": {"role": "assistant", "content": "  Possible Condition: Common cold  "}, "finish_reason": "stop"},
			{"index": 1, "message": {"role": "assistant", "content": "ignored"}, "finish_reason": "stop"}
		]
	}`)

	c := NewClient(Config{BaseURL: srv.URL + "/api/v1", Referer: "https://imed.example", Title: "I-MED"}, zaptest.NewLogger(t))
	text, err := c.Complete(context.Background(), "Symptoms: runny nose", testSettings())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Possible Condition: Common cold" {
		t.Fatalf("unexpected text %q", text)
	}

	if captured.path != "/api/v1/chat/completions" {
		t.Fatalf("unexpected path %s", captured.path)
	}
	if captured.auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", captured.auth)
	}
	if captured.referer != "https://imed.example" || captured.title != "I-MED" {
		t.Fatalf("missing attribution headers: %q %q", captured.referer, captured.title)
	}
	if captured.body["model"] != "mistralai/mistral-7b-instruct:free" {
		t.Fatalf("unexpected model %v", captured.body["model"])
	}
	if topP, _ := captured.body["top_p"].(float64); topP < 0.94 || topP > 0.96 {
		t.Fatalf("expected top_p 0.95, got %v", captured.body["top_p"])
	}
	if captured.body["max_tokens"] != float64(500) {
		t.Fatalf("unexpected max_tokens %v", captured.body["max_tokens"])
	}
}

func TestCompleteSendsZeroTemperature(t *testing.T) {
	srv, captured := newProvider(t, http.StatusOK, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}}]}`)

	c := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	s := testSettings()
	s.Temperature = 0
	if _, err := c.Complete(context.Background(), "Symptoms: runny nose", s); err != nil {
		t.Fatalf("complete: %v", err)
	}

	temperature, ok := captured.body["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from request body %v", captured.body)
	}
	if temperature <= 0 || temperature > 1e-6 {
		t.Fatalf("expected a near-zero temperature, got %v", temperature)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zaptest.NewLogger(t))
	s := testSettings()
	s.APIKey = ""
	if _, err := c.Complete(context.Background(), "x", s); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCompleteUpstreamStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"provider error body", http.StatusTooManyRequests, `{"error": {"message": "rate limited", "type": "rate_limit"}}`},
		{"plain error body", http.StatusBadGateway, `upstream exploded`},
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "bad key", "code": 401}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newProvider(t, tc.status, tc.body)
			c := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

			_, err := c.Complete(context.Background(), "x", testSettings())
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %T %v", err, err)
			}
			if statusErr.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, statusErr.StatusCode)
			}
		})
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"not json":   `<html>oops</html>`,
		"no choices": `{"id": "cmpl-1", "choices": []}`,
		"empty body": ``,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newProvider(t, http.StatusOK, body)
			c := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

			_, err := c.Complete(context.Background(), "x", testSettings())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url}, zaptest.NewLogger(t))
	_, err := c.Complete(context.Background(), "x", testSettings())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}
