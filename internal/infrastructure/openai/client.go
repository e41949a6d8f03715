package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
)

const defaultModel = "gpt-4o"

// Client talks to an OpenAI compatible chat completions endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *zap.Logger
	debug      bool
}

// NewClient creates a new vision completion client. Per-call deadlines come
// from the caller's context; the HTTP client timeout is only an upper bound.
func NewClient(baseURL, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		logger:  logger.Named("openai"),
	}
}

// SetDebug enables logging of request and response excerpts
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

type contentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *domain.ImagePart `json:"image_url,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// buildRequest renders the system instruction and the mixed text + image user message
func (c *Client) buildRequest(req domain.CompletionRequest) chatRequest {
	return chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: req.UserPrompt},
					{Type: "image_url", ImageURL: &domain.ImagePart{URL: req.Image.URL}},
				},
			},
		},
		MaxTokens: req.MaxTokens,
	}
}

// Complete sends one chat completion request and returns the first choice's text
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("User-Agent", "ShelfScan/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: request timed out after %s: %w", domain.ErrVisionAPIFailure, time.Since(start).Round(time.Millisecond), err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrVisionAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("vision API returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 500)),
		)
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrVisionAPIFailure, resp.StatusCode, upstreamMessage(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrVisionAPIFailure, err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrVisionAPIFailure)
	}

	content := chat.Choices[0].Message.Content
	if c.debug {
		c.logger.Debug("vision API response received",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("content", truncate(content, 100)),
		)
	}
	return content, nil
}

// upstreamMessage pulls error.message out of an OpenAI error body, falling back to the raw body
func upstreamMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response body"
	}
	return truncate(text, 200)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
