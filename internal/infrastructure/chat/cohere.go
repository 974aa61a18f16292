package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultCohereURL = "https://api.cohere.ai/v1/chat"

// Cohere calls the Cohere chat endpoint
type Cohere struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

func NewCohere(apiKey, model string, timeout time.Duration) *Cohere {
	return &Cohere{
		URL:    DefaultCohereURL,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: timeout},
	}
}

type cohereRequest struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}

type cohereResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (c *Cohere) Reply(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(cohereRequest{Model: c.Model, Message: message})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cohere request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("cohere read: %w", err)
	}
	var parsed cohereResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("cohere decode: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("cohere status %d: %s", resp.StatusCode, parsed.Message)
	}
	return parsed.Text, nil
}
