package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIAPIKeyEnv = "OPENAI_API_KEY"

type openAIConfig struct {
	APIKey      string   `json:"api_key"`
	BaseURL     string   `json:"base_url"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float32 `json:"temperature"`
}

type openAIProvider struct {
	client      *openai.Client
	maxTokens   int
	temperature *float32
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Configured() bool {
	return p.client != nil
}

func (p *openAIProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.client == nil {
		return "", ErrUnavailable
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: p.maxTokens,
	}
	if p.temperature != nil {
		req.Temperature = *p.temperature
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("openai request failed: %v: %w", err, ErrQuota)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices: %w", ErrMalformed)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func createOpenAIFactory(args interface{}) (IProvider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(openAIAPIKeyEnv))
	}
	provider := &openAIProvider{
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
	if apiKey == "" {
		return provider, nil
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	provider.client = openai.NewClientWithConfig(clientCfg)
	return provider, nil
}

func init() {
	Register("openai", createOpenAIFactory)
}
