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

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaMessage        `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// OllamaClient talks to a local Ollama server over its chat API.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllamaClient builds a client from the provider config entry.
func NewOllamaClient(pc config.ProviderConfig) *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    pc.BaseURL,
		model:      pc.Model,
	}
}

func (o *OllamaClient) ID() string { return "ollama" }

// Complete implements ProviderClient with a single non-streaming call.
// Ollama honors the seed option, so scoring runs are reproducible here.
func (o *OllamaClient) Complete(ctx context.Context, req CallRequest) (string, error) {
	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Seed > 0 {
		options["seed"] = req.Seed
	}

	payload := ollamaChatRequest{
		Model: o.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Stream:  false,
		Options: options,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{ProviderID: o.ID(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			ProviderID: o.ID(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("ollama chat: %s", truncateBody(respBody)),
		}
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if chatResp.Message.Content == "" {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("empty content in response")}
	}
	return chatResp.Message.Content, nil
}
