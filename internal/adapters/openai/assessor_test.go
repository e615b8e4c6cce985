package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/utils"
)

func newTestAssessor(t *testing.T, content string, status int) *Assessor {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "gpt-4", req.Model)
			if assert.Len(t, req.Messages, 2) {
				assert.Contains(t, req.Messages[1].Content, "jane@acme.com")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	return NewAssessor(NewClient("test-key", srv.URL), "gpt-4", 300, 0.1, 0.9, logger, utils.NewTextProcessor(logger))
}

func TestAssess(t *testing.T) {
	a := newTestAssessor(t, `{"disposable":false,"webmail":false,"score":91}`, http.StatusOK)

	got, err := a.Assess(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, got.Disposable)
	assert.False(t, got.Webmail)
	assert.Equal(t, 91, got.Score)
	assert.Equal(t, Source, got.Source)
}

func TestAssessUnparseableResponse(t *testing.T) {
	a := newTestAssessor(t, "I am not sure", http.StatusOK)

	_, err := a.Assess(context.Background(), "jane@acme.com")
	assert.Error(t, err)
}

func TestAssessUpstreamError(t *testing.T) {
	a := newTestAssessor(t, "", http.StatusInternalServerError)

	_, err := a.Assess(context.Background(), "jane@acme.com")
	assert.Error(t, err)
}
