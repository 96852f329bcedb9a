// Package gateway generates insights through an OpenAI-compatible chat
// completions endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel   = "google/gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ ports.InsightGenerator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrInsightNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: cfg.Logger.With("component", "insight-gateway"),
	}, nil
}

// Generate sends one chat completion. Gateway failures map onto the domain
// insight errors; unknown kinds fall back to the overview prompt.
func (c *Client) Generate(ctx context.Context, req ports.InsightRequest) (string, error) {
	p, ok := prompts[req.Kind]
	if !ok {
		p = prompts[ports.InsightOverview]
	}

	data, err := json.Marshal(codec.Payload(req.Payload))
	if err != nil {
		return "", fmt.Errorf("encode insight payload: %w", err)
	}

	c.logger.Info("requesting insight", "kind", req.Kind, "model", c.model)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.system},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(p.user, data)},
		},
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.logger.Error("gateway returned no insight", "kind", req.Kind)
		return "", fmt.Errorf("%w: no insight generated", domain.ErrInsightUnavailable)
	}

	c.logger.Info("insight generated", "kind", req.Kind)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return domain.ErrInsightRateLimited
	case http.StatusPaymentRequired:
		return domain.ErrInsightQuotaExhausted
	default:
		c.logger.Error("gateway error", "status", status, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrInsightUnavailable, err)
	}
}
