package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/config"
)

type recordingWriter struct {
	messages []string
	err      error
}

func (w *recordingWriter) WriteMessage(messageType int, data []byte) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, string(data))
	return nil
}

func newTestClient(baseURL string) Client {
	return NewClient(config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gpt-4o-mini",
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt([]string{"chunk one", "chunk two"}, "What is this about?")

	assert.Contains(t, prompt, "chunk one\n\nchunk two")
	assert.Contains(t, prompt, "What is this about?")
	assert.Contains(t, prompt, `"Answer is not available in the context."`)
}

func TestAnswer(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`{"choices":[{"message":{"content":"  The answer.  "}}]}`))
	}))
	defer srv.Close()

	answer, err := newTestClient(srv.URL).Answer(context.Background(),
		[]string{"relevant context"}, "the question?")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer, "surrounding whitespace is trimmed")

	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "relevant context")
	assert.Contains(t, gotReq.Messages[0].Content, "the question?")
	assert.False(t, gotReq.Stream)
}

func TestAnswerNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Answer(context.Background(), nil, "q")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamError, apperr.KindOf(err))
}

func TestAnswerRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "4")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exhausted"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Answer(context.Background(), nil, "q")
	require.Error(t, err)
	assert.Equal(t, apperr.KindRateLimited, apperr.KindOf(err))
	assert.Equal(t, 4*time.Second, apperr.RetryAfterOf(err))
}

func TestAnswerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Answer(context.Background(), nil, "q")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestStreamAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
			`data: {"choices":[{"delta":{"content":" world"}}]}`,
			`data: {"choices":[{"delta":{}}]}`,
			`data: [DONE]`,
		}
		for _, c := range chunks {
			w.Write([]byte(c + "\n\n"))
		}
	}))
	defer srv.Close()

	writer := &recordingWriter{}
	err := newTestClient(srv.URL).StreamAnswer(context.Background(),
		[]string{"ctx"}, "q", writer)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", " world"}, writer.messages)
}

func TestStreamAnswerWriterFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"Hello"}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	writer := &recordingWriter{err: assert.AnError}
	err := newTestClient(srv.URL).StreamAnswer(context.Background(), nil, "q", writer)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to write streamed message"))
}
