package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterReferer = "http://localhost:8000"
	defaultOpenRouterTitle   = "Manufacturing Maintenance Agent"
	openRouterAPIKeyEnv      = "OPENROUTER_API_KEY"
)

type openrouterConfig struct {
	APIKey      string   `json:"api_key"`
	BaseURL     string   `json:"base_url"`
	HTTPReferer string   `json:"http_referer"`
	XTitle      string   `json:"x_title"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

type openrouterProvider struct {
	apiKey      string
	baseURL     string
	httpReferer string
	xTitle      string
	maxTokens   int
	temperature *float64
	client      *http.Client
}

type openrouterRequest struct {
	Model       string          `json:"model"`
	Messages    []openrouterMsg `json:"messages"`
	Stream      bool            `json:"stream"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openrouterMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openrouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *openrouterProvider) Name() string {
	return "openrouter"
}

func (p *openrouterProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *openrouterProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	reqBody := openrouterRequest{
		Model:       model,
		Messages:    []openrouterMsg{{Role: "user", Content: prompt}},
		Stream:      false,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if p.httpReferer != "" {
		req.Header.Set("HTTP-Referer", p.httpReferer)
	}
	if p.xTitle != "" {
		req.Header.Set("X-Title", p.xTitle)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError("openrouter", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out openrouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode openrouter response: %v: %w", err, ErrMalformed)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openrouter response has no choices: %w", ErrMalformed)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func createOpenRouterFactory(args interface{}) (IProvider, error) {
	cfg := &openrouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(openRouterAPIKeyEnv))
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	referer := strings.TrimSpace(cfg.HTTPReferer)
	if referer == "" {
		referer = defaultOpenRouterReferer
	}
	title := strings.TrimSpace(cfg.XTitle)
	if title == "" {
		title = defaultOpenRouterTitle
	}
	provider := &openrouterProvider{
		apiKey:      apiKey,
		baseURL:     baseURL,
		httpReferer: referer,
		xTitle:      title,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      http.DefaultClient,
	}
	return provider, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}
