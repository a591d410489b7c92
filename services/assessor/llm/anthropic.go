package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AleutianAI/Verdant/services/assessor/config"
)

const (
	anthropicAPIVersion = "2023-06-01"
	anthropicBaseURL    = "https://api.anthropic.com/v1/messages"
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicClient calls the Anthropic Messages API over plain REST.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewAnthropicClient builds a client from the provider config entry.
func NewAnthropicClient(pc config.ProviderConfig) *AnthropicClient {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicClient{
		// Per-call deadlines come from the gateway context; this is a
		// safety net only.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiKey:     pc.APIKey,
		model:      pc.Model,
		baseURL:    baseURL,
	}
}

func (a *AnthropicClient) ID() string { return "anthropic" }

// Complete implements ProviderClient with a single round-trip.
func (a *AnthropicClient) Complete(ctx context.Context, req CallRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	temp := req.Temperature

	payload := anthropicRequest{
		Model:       a.model,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		MaxTokens:   maxTokens,
		Temperature: &temp,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{ProviderID: a.ID(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", &ProviderError{ProviderID: a.ID(), Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{ProviderID: a.ID(), Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			ProviderID: a.ID(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("anthropic API: %s", truncateBody(respBody)),
		}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &ProviderError{ProviderID: a.ID(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if apiResp.Error != nil {
		return "", &ProviderError{
			ProviderID: a.ID(),
			Err:        fmt.Errorf("anthropic API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message),
		}
	}

	text := ""
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", &ProviderError{ProviderID: a.ID(), Err: fmt.Errorf("empty content in response")}
	}
	return text, nil
}

// truncateBody keeps error messages log-friendly.
func truncateBody(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "...(truncated)"
	}
	return string(b)
}
