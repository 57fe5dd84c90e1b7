package openai_provider

import (
	"context"
	"fmt"
	"time"

	"github.com/homeboard/homeboard/internal/httpx"
	"github.com/homeboard/homeboard/internal/provider"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// Client calls OpenAI's chat-completions API.
type Client struct {
	apiKey string
	model  string
	http   *httpx.Client
}

// Message represents a message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func New(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   httpx.New(timeout, 1, 0),
	}
}

// Generate sends a system+user conversation and returns the single text
// completion. Sampling stays at or below 0.4 so schema-following output
// dominates.
func (c *Client) Generate(ctx context.Context, system, user string, opts provider.Options) (string, error) {
	temp := opts.Temperature
	if temp <= 0 || temp > 0.4 {
		temp = 0.2
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: user})

	var resp response
	err := c.http.DoJSON(ctx, "POST", chatCompletionsURL, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, request{Model: c.model, Messages: messages, Temperature: temp, MaxTokens: maxTokens}, &resp)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
