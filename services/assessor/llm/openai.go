package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/Verdant/services/assessor/config"
)

// OpenAIClient wraps the go-openai SDK behind the ProviderClient contract.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client from the provider config entry.
func NewOpenAIClient(pc config.ProviderConfig) *OpenAIClient {
	if pc.BaseURL != "" {
		cfg := openai.DefaultConfig(pc.APIKey)
		cfg.BaseURL = pc.BaseURL
		return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: pc.Model}
	}
	return &OpenAIClient{client: openai.NewClient(pc.APIKey), model: pc.Model}
}

func (o *OpenAIClient) ID() string { return "openai" }

// Complete implements ProviderClient with a single round-trip.
func (o *OpenAIClient) Complete(ctx context.Context, req CallRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}
	if req.Seed > 0 {
		seed := req.Seed
		chatReq.Seed = &seed
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				ProviderID: o.ID(),
				StatusCode: apiErr.HTTPStatusCode,
				Err:        err,
			}
		}
		return "", &ProviderError{ProviderID: o.ID(), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{ProviderID: o.ID(), Err: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
