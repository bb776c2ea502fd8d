// internal/common/assistant/client_test.go
package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-orchestrator/internal/common/config"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/models"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.AssistantConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5000,
	}, logger.NewTestLogger(t))
}

func TestClient_CreateConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assistant/conversations", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What drives X?", body["message"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"conversationId": "conv-1", "messageId": "msg-1"}`))
	}))
	defer server.Close()

	handle, err := testClient(t, server.URL).CreateConversation(context.Background(), "What drives X?")

	require.NoError(t, err)
	assert.Equal(t, "conv-1", handle.ConversationID)
	assert.Equal(t, "msg-1", handle.MessageID)
}

func TestClient_GetMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/assistant/conversations/conv-1/messages/msg-1", r.URL.Path)

		w.Write([]byte(`{
			"id": "msg-1",
			"status": "completed",
			"content": "the answer",
			"sources": [{"sourceId": "s1", "title": "Doc", "url": "https://example.com/doc"}],
			"metadata": {"model": "assistant-v2"}
		}`))
	}))
	defer server.Close()

	payload, err := testClient(t, server.URL).GetMessage(context.Background(), "conv-1", "msg-1")

	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, payload.State())
	assert.Equal(t, "the answer", payload.Content)
	require.Len(t, payload.Sources, 1)
	assert.Equal(t, "s1", payload.Sources[0].SourceID)
	assert.Equal(t, "assistant-v2", payload.Metadata["model"])
}

func TestClient_SendFollowup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assistant/conversations/conv-1/messages", r.URL.Path)

		// Some deployments omit the conversation id on followups.
		w.Write([]byte(`{"messageId": "msg-2"}`))
	}))
	defer server.Close()

	handle, err := testClient(t, server.URL).SendFollowup(context.Background(), "conv-1", "and then?")

	require.NoError(t, err)
	assert.Equal(t, "conv-1", handle.ConversationID)
	assert.Equal(t, "msg-2", handle.MessageID)
}

func TestClient_GiveFeedback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assistant/messages/msg-1/feedback", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "success", body["feedback"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := testClient(t, server.URL).GiveFeedback(context.Background(), "msg-1", "success")

	assert.NoError(t, err)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "assistant backend unavailable"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	handle, err := client.CreateConversation(context.Background(), "What drives X?")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "assistant backend unavailable")
	assert.Nil(t, handle)
}

func TestClient_MalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).GetMessage(context.Background(), "conv-1", "msg-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
