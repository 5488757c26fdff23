package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/platepal/platepal/internal/database"
)

type geminiKeyStore struct {
	database.Store

	key string
}

func (s *geminiKeyStore) GetCredential(context.Context, string) (string, error) {
	return s.key, nil
}

func newGeminiTransport(key string, server *httptest.Server) *GeminiTransport {
	t := NewGeminiTransport("gemini-2.0-flash", 500, 5*time.Second,
		&geminiKeyStore{key: key}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if server != nil {
		t.httpOptions = &genai.HTTPOptions{BaseURL: server.URL}
	}
	return t
}

func TestGeminiTransportMissingCredential(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	transport := newGeminiTransport("", server)

	_, err := transport.Complete(t.Context(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, 0.7)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Complete() error = %v, want ErrMissingCredential", err)
	}
	if hits.Load() != 0 {
		t.Errorf("API contacted %d times with no credential, want 0", hits.Load())
	}
}

func TestGeminiTransportComplete(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [
				{"content": {"role": "model", "parts": [{"text": "Use basil instead."}]}}
			]
		}`))
	}))
	defer server.Close()

	transport := newGeminiTransport("gm-test", server)

	messages := []ChatMessage{
		{Role: RoleSystem, Content: "You are a cooking assistant."},
		{Role: RoleUser, Content: "What can replace oregano?"},
	}
	reply, err := transport.Complete(t.Context(), messages, 0.3)
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if reply != "Use basil instead." {
		t.Errorf("Complete() = %q", reply)
	}

	if !strings.Contains(gotPath, "gemini-2.0-flash") || !strings.Contains(gotPath, "generateContent") {
		t.Errorf("request path = %q, want generateContent call for the configured model", gotPath)
	}

	// System messages travel as the system instruction, not as contents.
	if _, ok := gotBody["systemInstruction"]; !ok {
		t.Error("request body has no systemInstruction for the system message")
	}
	raw, _ := json.Marshal(gotBody["contents"])
	if strings.Contains(string(raw), "cooking assistant") {
		t.Error("system message leaked into contents")
	}
	if !strings.Contains(string(raw), "replace oregano") {
		t.Errorf("user message missing from contents: %s", raw)
	}
}

func TestGeminiTransportEmptyCompletionFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	transport := newGeminiTransport("gm-test", server)

	reply, err := transport.Complete(t.Context(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, 0.7)
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if reply != noResponseFallback {
		t.Errorf("Complete() = %q, want fallback text", reply)
	}
}

func TestGeminiTransportUpstreamStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{
			"error": {"code": 429, "message": "quota exhausted", "status": "RESOURCE_EXHAUSTED"}
		}`))
	}))
	defer server.Close()

	transport := newGeminiTransport("gm-test", server)

	_, err := transport.Complete(t.Context(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, 0.7)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Complete() error = %v, want *UpstreamError", err)
	}
	if upstreamErr.Status != http.StatusTooManyRequests {
		t.Errorf("UpstreamError.Status = %d, want 429", upstreamErr.Status)
	}
}
