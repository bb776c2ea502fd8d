// Package assistant wraps the conversational assistant HTTP API. Answers are
// produced asynchronously on the remote side: CreateConversation starts one,
// GetMessage is the idempotent poll used to observe its progress.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"query-orchestrator/internal/common/config"
	commonhttp "query-orchestrator/internal/common/http"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/common/metrics"
	"query-orchestrator/internal/models"
)

var ErrUnexpectedStatus = errors.New("assistant: unexpected status")

// ConversationHandle identifies one conversation and its initial message.
// It only lives for the duration of a single angle resolution.
type ConversationHandle struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

type Client struct {
	cfg    config.AssistantConfig
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg config.AssistantConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log.With(map[string]interface{}{
			"component": "assistant",
		}),
	}
}

// CreateConversation opens a new conversation seeded with the given message.
func (c *Client) CreateConversation(ctx context.Context, message string) (*ConversationHandle, error) {
	var handle ConversationHandle
	err := c.post(ctx, "/assistant/conversations", map[string]string{"message": message}, &handle)
	c.count("create_conversation", err)
	if err != nil {
		return nil, err
	}
	return &handle, nil
}

// GetMessage fetches one message. Safe to call repeatedly; the returned
// payload carries the poll state.
func (c *Client) GetMessage(ctx context.Context, conversationID, messageID string) (*models.MessagePayload, error) {
	url := fmt.Sprintf("%s/assistant/conversations/%s/messages/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), conversationID, messageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var payload models.MessagePayload
	err = c.send(req, &payload)
	c.count("get_message", err)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// SendFollowup posts another message into an existing conversation.
func (c *Client) SendFollowup(ctx context.Context, conversationID, message string) (*ConversationHandle, error) {
	var handle ConversationHandle
	path := fmt.Sprintf("/assistant/conversations/%s/messages", conversationID)
	err := c.post(ctx, path, map[string]string{"message": message}, &handle)
	c.count("send_followup", err)
	if err != nil {
		return nil, err
	}
	if handle.ConversationID == "" {
		handle.ConversationID = conversationID
	}
	return &handle, nil
}

// GiveFeedback reports an outcome for a delivered message.
func (c *Client) GiveFeedback(ctx context.Context, messageID, feedback string) error {
	path := fmt.Sprintf("/assistant/messages/%s/feedback", messageID)
	err := c.post(ctx, path, map[string]string{"feedback": feedback}, nil)
	c.count("give_feedback", err)
	return err
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(encoded))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("assistant: decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) count(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CapabilityRequestsTotal.WithLabelValues("assistant", operation, status).Inc()
}
