package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
)

// Runner executes a task as an agent and returns the model's text.
type Runner interface {
	Run(ctx context.Context, ag Agent, task Task) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	apiKey      string
	httpClient  *http.Client
	book        *logbook.Logbook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogbook routes request logging to the session logbook.
func WithLogbook(book *logbook.Logbook) ClientOption {
	return func(c *Client) { c.book = book }
}

// NewClient builds a client from the project LLM settings. The API
// key is read from the environment variable the config names.
func NewClient(cfg config.LLMConfig, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("agent: missing API key, set %s", cfg.APIKeyEnv)
	}
	c := &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Run sends the agent persona as the system prompt and the task as
// the user prompt, returning the first completion.
func (c *Client) Run(ctx context.Context, ag Agent, task Task) (string, error) {
	system := fmt.Sprintf("You are a %s.\nGoal: %s\n%s", ag.Role, ag.Goal, ag.Backstory)
	user := task.Description
	if task.ExpectedOutput != "" {
		user += "\n\nExpected output: " + task.ExpectedOutput
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("agent: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("agent: %s request failed: %w", ag.Role, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("agent: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agent: %s returned %d: %s", ag.Role, resp.StatusCode, excerpt(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("agent: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("agent: %s: %s", ag.Role, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("agent: %s returned no choices", ag.Role)
	}

	c.book.Info("agent: %s completed in %s", ag.Role, time.Since(started).Round(time.Millisecond))
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
