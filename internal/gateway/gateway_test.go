package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/gateway"
	"github.com/platepal/platepal/internal/ratelimit"
)

// stubUpstream records the last forwarded request and returns a canned
// completion.
type stubUpstream struct {
	calls   int
	lastReq openai.ChatCompletionRequest
	content string
	err     error
}

func (s *stubUpstream) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 3000, ShutdownTimeout: 5 * time.Second},
		AI: config.AIConfig{
			Model:     "gpt-3.5-turbo",
			MaxTokens: 500,
			Timeout:   5 * time.Second,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(upstream gateway.ChatCompleter, limiter ratelimit.Limiter) *gateway.Server {
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(1000, time.Minute)
	}
	return gateway.New(testConfig(), upstream, limiter, testLogger())
}

func postChat(t *testing.T, server *gateway.Server, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeChat(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestChatForwardsFixedModelSettings(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{content: "Sure, here is a tip."}
	server := newTestServer(upstream, nil)

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeChat(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["response"] != "Sure, here is a tip." {
		t.Errorf("response = %v", body["response"])
	}

	if upstream.lastReq.Model != "gpt-3.5-turbo" {
		t.Errorf("forwarded model = %q, want gpt-3.5-turbo", upstream.lastReq.Model)
	}
	if upstream.lastReq.MaxTokens != 500 {
		t.Errorf("forwarded max tokens = %d, want 500", upstream.lastReq.MaxTokens)
	}
	if upstream.lastReq.Temperature != 0.7 {
		t.Errorf("default temperature = %v, want 0.7", upstream.lastReq.Temperature)
	}
}

func TestChatHonorsRequestTemperature(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{content: "ok"}
	server := newTestServer(upstream, nil)

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}], "temperature": 0.3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if upstream.lastReq.Temperature != 0.3 {
		t.Errorf("forwarded temperature = %v, want 0.3", upstream.lastReq.Temperature)
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"messages": [`},
		{"missing messages", `{}`},
		{"empty messages", `{"messages": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			upstream := &stubUpstream{content: "should not be reached"}
			server := newTestServer(upstream, nil)

			resp := postChat(t, server, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if upstream.calls != 0 {
				t.Errorf("upstream called %d times for invalid request, want 0", upstream.calls)
			}
		})
	}
}

func TestChatEmptyCompletionFallback(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{content: ""}
	server := newTestServer(upstream, nil)

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeChat(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["response"] != "No response from AI" {
		t.Errorf("response = %v, want fallback text", body["response"])
	}
}

func TestChatUpstreamStatusPassthrough(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{err: &openai.APIError{
		HTTPStatusCode: http.StatusServiceUnavailable,
		Message:        "model overloaded",
	}}
	server := newTestServer(upstream, nil)

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	body := decodeChat(t, resp)
	if body["error"] != "AI service error" {
		t.Errorf("error = %v, provider message must not leak to clients", body["error"])
	}
}

func TestChatTransportErrorIs500(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{err: errors.New("connection reset")}
	server := newTestServer(upstream, nil)

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	body := decodeChat(t, resp)
	if body["error"] != "Failed to process AI request" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestChatRateLimit(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewMemoryLimiter(2, 15*time.Minute)
	upstream := &stubUpstream{content: "ok"}
	server := newTestServer(upstream, limiter)

	for i := 1; i <= 2; i++ {
		resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != "Too many requests from this IP, please try again later." {
		t.Errorf("429 body = %q", string(raw))
	}
	if upstream.calls != 2 {
		t.Errorf("upstream called %d times, want 2", upstream.calls)
	}
}

func TestChatRateLimitWindowReset(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewMemoryLimiter(1, 15*time.Minute)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return current })

	upstream := &stubUpstream{content: "ok"}
	server := newTestServer(upstream, limiter)

	if resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", resp.StatusCode)
	}
	if resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", resp.StatusCode)
	}

	current = current.Add(15 * time.Minute)
	if resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("post-window request status = %d, want 200", resp.StatusCode)
	}
}

// failingLimiter simulates a broken limiter backend.
type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis unreachable")
}

func TestRateLimiterFailureFailsOpen(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{content: "ok"}
	server := newTestServer(upstream, failingLimiter{})

	resp := postChat(t, server, `{"messages": [{"role": "user", "content": "hi"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 when limiter errors", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubUpstream{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeChat(t, resp)
	if body["status"] != "OK" {
		t.Errorf("status field = %v, want OK", body["status"])
	}
}
