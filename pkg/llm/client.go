// Package llm provides a client for chat-completion Large Language Models.
//
// The client owns the question-answering prompt contract: retrieved chunks
// and the user question go in, a grounded answer comes out, and questions
// the context cannot answer produce an explicit "not available" response.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/config"
	"pdf-chat-go/internal/util"
)

// promptTemplate is the fixed question-answering contract. %s placeholders
// are the retrieved context and the question, in that order.
const promptTemplate = `Answer the question as requested by the user (detailed, shortly, with giving metrics etc.) from the given context. If the answer is not in the provided context just say "Answer is not available in the context." do not provide the answer. If answer is partly available only give the available information.

Context:
%s

Question:
%s
`

// MessageWriter defines an interface for writing streamed answer fragments.
// Both a websocket connection and test doubles satisfy it.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Client defines the interface for an LLM client.
type Client interface {
	// Answer generates a grounded answer from the retrieved chunks and the
	// question, returning the trimmed response text.
	Answer(ctx context.Context, chunks []string, question string) (string, error)
	// StreamAnswer generates the same answer but writes it to writer as the
	// upstream service streams it.
	StreamAnswer(ctx context.Context, chunks []string, question string, writer MessageWriter) error
}

type chatCompletionClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient creates a new LLM client.
func NewClient(cfg config.LLMConfig) Client {
	return &chatCompletionClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// buildPrompt lays retrieved chunks and the question into the QA template.
func buildPrompt(chunks []string, question string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(chunks, "\n\n"), question)
}

// Answer implements Client.
func (c *chatCompletionClient) Answer(ctx context.Context, chunks []string, question string) (string, error) {
	resp, err := c.send(ctx, buildPrompt(chunks, question), false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", apperr.Wrap(apperr.KindUpstreamError, "failed to decode chat response", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperr.New(apperr.KindUpstreamError, "chat api returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// StreamAnswer implements Client. Each content delta is written as one text
// message; writer errors abort the stream.
func (c *chatCompletionClient) StreamAnswer(ctx context.Context, chunks []string, question string, writer MessageWriter) error {
	resp, err := c.send(ctx, buildPrompt(chunks, question), true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return apperr.Wrap(apperr.KindUpstreamError, "failed to read from stream", err)
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if strings.TrimSpace(data) == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := writer.WriteMessage(websocket.TextMessage, []byte(content)); err != nil {
			return fmt.Errorf("failed to write streamed message: %w", err)
		}
	}
	return nil
}

// send issues the chat-completions request and classifies failures the same
// way as the embedding client.
func (c *chatCompletionClient) send(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   stream,
	}
	if c.cfg.Generation.Temperature != 0 {
		t := c.cfg.Generation.Temperature
		reqBody.Temperature = &t
	}
	if c.cfg.Generation.TopP != 0 {
		p := c.cfg.Generation.TopP
		reqBody.TopP = &p
	}
	if c.cfg.Generation.MaxTokens != 0 {
		m := c.cfg.Generation.MaxTokens
		reqBody.MaxTokens = &m
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "chat service unreachable", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		detail := fmt.Sprintf("chat api returned %s: %s", resp.Status, string(body))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperr.RateLimited(detail, util.ParseRetryAfter(resp.Header.Get("Retry-After")), nil)
		}
		return nil, apperr.New(apperr.KindUpstreamError, detail)
	}
	return resp, nil
}
