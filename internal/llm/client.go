package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// Completer is the chat-completion boundary shared by intake and outreach.
type Completer interface {
	Complete(ctx context.Context, system string, transcript []model.ChatMessage) (string, error)
}

type Config struct {
	Name        string // provider name used in errors and logs
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Referer     string
	Title       string
	Timeout     time.Duration
}

// Client talks to any OpenAI-compatible chat completions endpoint (Groq,
// OpenRouter, OpenAI).
type Client struct {
	client openai.Client
	cfg    Config
	Logger *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	return &Client{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		Logger: logger.OrNop(log),
	}
}

func (c *Client) Complete(ctx context.Context, system string, transcript []model.ChatMessage) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    convertMessages(system, transcript),
		Temperature: openai.Float(c.cfg.Temperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", appErrors.NewProviderError(c.cfg.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", appErrors.NewProviderError(c.cfg.Name, errors.New("no choices in response"))
	}

	c.Logger.Debug("chat completion finished",
		zap.String("provider", c.cfg.Name),
		zap.String("model", c.cfg.Model),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", appErrors.NewProviderError(c.cfg.Name, errors.New("empty completion"))
	}
	return content, nil
}

func convertMessages(system string, transcript []model.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript)+1)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, m := range transcript {
		switch m.Role {
		case model.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case model.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return msgs
}

var _ Completer = (*Client)(nil)
