package openai

import (
	"context"
	"fmt"
)

// ChatClient calls the /chat/completions endpoint.
type ChatClient struct {
	api *apiClient
}

// NewChatClient creates a chat completions client. The API key is required.
func NewChatClient(cfg Config) (*ChatClient, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ChatClient{api: api}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete submits prompt as a single user message and returns the
// completion text verbatim.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:    c.api.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	var resp chatResponse
	if err := c.api.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: chat: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
