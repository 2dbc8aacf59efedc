package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"oneclickgrocery/internal/platform/prompt"
)

// Client represents a client for an OpenAI-compatible local LLM server.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM.
func NewClient(apiURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		model:      model,
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content represents the content of a message.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a request to the local LLM and returns the response.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: []Content{{Type: "text", Text: text}},
			},
		},
		Temperature: 0,
		MaxTokens:   16,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) > 0 {
		return llmResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("no content found in response")
}

// Classify asks the local model which of keys the query describes.
func (c *Client) Classify(ctx context.Context, query string, keys []string) (string, error) {
	responseText, err := c.GenerateContent(ctx, prompt.Classify(query, keys))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return prompt.PickKey(responseText, keys)
}
