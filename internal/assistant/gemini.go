package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/platepal/platepal/internal/database"
)

// GeminiTransport talks to Google's Gemini API directly using the
// credential from the local store. System messages become the system
// instruction; user messages become the conversation contents.
type GeminiTransport struct {
	model     string
	maxTokens int
	timeout   time.Duration
	store     database.Store
	logger    *slog.Logger

	// httpOptions overrides the API endpoint. Nil means the production
	// Gemini API; tests point it at a local server.
	httpOptions *genai.HTTPOptions
}

// NewGeminiTransport creates a direct-mode transport for the Gemini API.
func NewGeminiTransport(model string, maxTokens int, timeout time.Duration, store database.Store, logger *slog.Logger) *GeminiTransport {
	return &GeminiTransport{
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		store:     store,
		logger:    logger.With("component", "gemini_transport"),
	}
}

func (t *GeminiTransport) Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error) {
	apiKey, err := t.store.GetCredential(ctx, database.CredentialProviderKey)
	if err != nil {
		return "", fmt.Errorf("failed to read provider credential: %w", err)
	}
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if t.httpOptions != nil {
		clientCfg.HTTPOptions = *t.httpOptions
	}

	client, err := genai.NewClient(timeoutCtx, clientCfg)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create genai client: %v", ErrTransport, err)
	}

	var systemParts []string
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
	}

	//nolint:gosec // max token cap is validated to fit int32
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(t.maxTokens),
	}
	if len(systemParts) > 0 {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	startTime := time.Now()
	resp, err := client.Models.GenerateContent(timeoutCtx, t.model, contents, genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code > 0 {
			t.logger.ErrorContext(ctx, "Gemini returned error status", "status", apiErr.Code, "error", err)
			return "", &UpstreamError{Status: apiErr.Code, Message: apiErr.Message}
		}
		t.logger.ErrorContext(ctx, "Gemini request failed", "error", err)
		return "", fmt.Errorf("%w: gemini request failed: %v", ErrTransport, err)
	}

	t.logger.DebugContext(ctx, "Gemini request completed",
		"duration_ms", time.Since(startTime).Milliseconds())

	text := resp.Text()
	if text == "" {
		t.logger.WarnContext(ctx, "Gemini returned no completion content, using fallback")
		return noResponseFallback, nil
	}

	return text, nil
}
