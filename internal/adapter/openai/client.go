// Package openai talks to OpenAI-compatible chat-completions backends.
// A rotating pool of credentials is tried in round-robin; each turn
// retries at most once per configured credential before giving up.
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

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/domain"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

// ErrAllProvidersFailed means the whole credential pool was exhausted.
var ErrAllProvidersFailed = errors.New("all ai providers failed")

type Client struct {
	pool        *ProviderPool
	httpc       *http.Client
	logger      logger.Logger
	timeout     time.Duration
	temperature float64
}

func NewClient(pool *ProviderPool, timeout time.Duration, temperature float64, lgr logger.Logger) *Client {
	return &Client{
		pool:        pool,
		httpc:       &http.Client{},
		logger:      lgr,
		timeout:     timeout,
		temperature: temperature,
	}
}

// Wire types for the chat-completions API.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []toolWrapper `json:"tools,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolWrapper struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Chat(ctx context.Context, system string, history []domain.Turn, tools []interfaces.ToolDef) (*interfaces.ChatResponse, error) {
	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	wrapped := make([]toolWrapper, 0, len(tools))
	for _, t := range tools {
		wrapped = append(wrapped, toolWrapper{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var lastErr error
	for attempt := 0; attempt < c.pool.Size(); attempt++ {
		cred := c.pool.Next()

		resp, err := c.call(ctx, cred.BaseURL, cred.APIKey, chatRequest{
			Model:       cred.Model,
			Messages:    messages,
			Tools:       wrapped,
			Temperature: c.temperature,
		})
		if err != nil {
			lastErr = err
			c.logger.Warn("ai_provider_failed", "Provider call failed, rotating to next credential", "", map[string]interface{}{
				"provider": cred.Name,
				"attempt":  attempt + 1,
				"error":    err.Error(),
			})
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}

func (c *Client) call(ctx context.Context, baseURL, apiKey string, reqBody chatRequest) (*interfaces.ChatResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var completion chatCompletion
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	msg := completion.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0].Function
		return &interfaces.ChatResponse{
			ToolCall: &interfaces.ToolCall{
				Name:      call.Name,
				Arguments: json.RawMessage(call.Arguments),
			},
		}, nil
	}

	return &interfaces.ChatResponse{Text: msg.Content}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
