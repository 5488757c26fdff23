package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/database"
)

// Transport sends an assembled completion request to the provider and
// returns the model's free-text reply. Exactly one implementation is
// selected at startup; there is no per-request fallback between modes.
type Transport interface {
	Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error)
}

// NewTransport selects the transport strategy from configuration:
// proxy mode talks to the gateway with no credential attached, direct
// mode talks to the configured provider using the locally stored
// credential.
func NewTransport(cfg *config.Config, store database.Store, logger *slog.Logger) Transport {
	if cfg.AI.Mode == "proxy" {
		return NewProxyTransport(cfg.AI.GatewayURL, cfg.AI.Timeout, logger)
	}
	if cfg.AI.Provider == "gemini" {
		return NewGeminiTransport(cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Timeout, store, logger)
	}
	return NewDirectTransport(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Timeout, store, logger)
}

// ProxyTransport sends completion requests through the PlatePal gateway,
// which holds the provider credential server-side.
type ProxyTransport struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProxyTransport creates a transport targeting the gateway at
// gatewayURL.
func NewProxyTransport(gatewayURL string, timeout time.Duration, logger *slog.Logger) *ProxyTransport {
	return &ProxyTransport{
		endpoint: gatewayURL + "/api/ai/chat",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "proxy_transport"),
	}
}

// Wire shapes for the gateway's /api/ai/chat endpoint.
type gatewayChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type gatewayChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (t *ProxyTransport) Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error) {
	payload, err := json.Marshal(gatewayChatRequest{
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.ErrorContext(ctx, "Gateway request failed", "error", err)
		return "", fmt.Errorf("%w: gateway request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read gateway response: %v", ErrTransport, err)
	}

	t.logger.DebugContext(ctx, "Gateway request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(startTime).Milliseconds())

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %s", ErrRateLimited, string(body))
	}

	if resp.StatusCode != http.StatusOK {
		var errBody gatewayChatResponse
		_ = json.Unmarshal(body, &errBody)
		return "", &UpstreamError{Status: resp.StatusCode, Message: errBody.Error}
	}

	var chatResp gatewayChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: unexpected gateway response: %v", ErrTransport, err)
	}

	return chatResp.Response, nil
}
