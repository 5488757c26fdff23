package gateway

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/platepal/platepal/internal/assistant"
)

type chatRequest struct {
	Messages    []assistant.ChatMessage `json:"messages"`
	Temperature *float32                `json:"temperature"`
}

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:  "OK",
		Message: "PlatePal AI Gateway is running",
	})
}

// handleChat forwards a chat completion request to the upstream provider.
// The model and token budget are fixed server-side; clients control only
// the messages and the sampling temperature.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chatResponse{
			Success: false,
			Error:   "invalid request body",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(chatResponse{
			Success: false,
			Error:   "messages array is required",
		})
	}

	temperature := assistant.DefaultChatTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), s.cfg.AI.Timeout)
	defer cancel()

	resp, err := s.upstream.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.AI.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   s.cfg.AI.MaxTokens,
	})
	if err != nil {
		return s.upstreamError(c, err)
	}

	response := ""
	if len(resp.Choices) > 0 {
		response = resp.Choices[0].Message.Content
	}
	if response == "" {
		s.logger.WarnContext(c.Context(), "Upstream returned empty completion",
			"request_id", c.Locals("request_id"))
		response = "No response from AI"
	}

	return c.JSON(chatResponse{
		Success:  true,
		Response: response,
	})
}

// upstreamError maps a provider failure onto the client response. The
// provider's own status code passes through when it sent one; the raw
// provider message stays in the server log only.
func (s *Server) upstreamError(c *fiber.Ctx, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		s.logger.ErrorContext(c.Context(), "Upstream request failed",
			"request_id", c.Locals("request_id"),
			"status", apiErr.HTTPStatusCode,
			"error", apiErr.Message)
		return c.Status(apiErr.HTTPStatusCode).JSON(chatResponse{
			Success: false,
			Error:   "AI service error",
		})
	}

	s.logger.ErrorContext(c.Context(), "Upstream request failed",
		"request_id", c.Locals("request_id"),
		"error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(chatResponse{
		Success: false,
		Error:   "Failed to process AI request",
	})
}
