// Package genai implements the text-generation capability against an Azure
// OpenAI style chat-completions deployment.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"query-orchestrator/internal/common/config"
	commonhttp "query-orchestrator/internal/common/http"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/common/metrics"
)

var (
	ErrRequestFailed = errors.New("GENAI_REQUEST_FAILED")
	ErrEmptyResponse = errors.New("GENAI_EMPTY_RESPONSE")
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	cfg    config.GenAIConfig
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log.With(map[string]interface{}{
			"component": "genai",
		}),
	}
}

// Complete sends a single-turn prompt and returns the model's text. One
// attempt per call; retrying is the caller's decision.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteMessages(ctx, []Message{{Role: RoleUser, Content: prompt}})
}

// CompleteMessages runs one chat completion over the given turns.
func (c *Client) CompleteMessages(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrRequestFailed, err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CapabilityRequestsTotal.WithLabelValues("genai", "complete", "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.CapabilityRequestsTotal.WithLabelValues("genai", "complete", "error").Inc()
		return "", fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.CapabilityRequestsTotal.WithLabelValues("genai", "complete", "error").Inc()
		if parsed.Error != nil {
			return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		metrics.CapabilityRequestsTotal.WithLabelValues("genai", "complete", "empty").Inc()
		return "", ErrEmptyResponse
	}

	metrics.CapabilityRequestsTotal.WithLabelValues("genai", "complete", "ok").Inc()
	c.logger.Debug("completion returned", map[string]interface{}{
		"finishReason": parsed.Choices[0].FinishReason,
		"chars":        len(parsed.Choices[0].Message.Content),
	})

	return parsed.Choices[0].Message.Content, nil
}
