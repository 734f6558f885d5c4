package anthropic

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/httpclient"
	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/ports"
)

var _ ports.Completer = (*Client)(nil)

const providerName = "anthropic"

// Config configures the Messages API client.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient httpclient.HTTPClient
}

// Client sends completion requests to the Anthropic Messages API. It never
// retries: a failed request is classified and returned to the caller.
type Client struct {
	api sdk.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.ErrAPIKeyMissing
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{api: sdk.NewClient(opts...)}, nil
}

// GetProviderName implements ports.Completer
func (c *Client) GetProviderName() string {
	return providerName
}

// Complete implements ports.Completer
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	start := time.Now()
	slog.Debug("sending completion request",
		"model", req.Model,
		"system_segments", len(req.System),
		"messages", len(req.Messages),
		"max_tokens", req.MaxTokens)

	msg, err := c.api.Messages.New(ctx, buildParams(req))
	if err != nil {
		classified := classifyError(err)
		if stderrors.Is(classified, context.Canceled) {
			slog.Debug("completion request cancelled", "model", req.Model)
			return nil, classified
		}
		slog.Debug("completion request failed",
			"model", req.Model,
			"reason", errors.ReasonOf(classified),
			"error", err)
		return nil, classified
	}

	result := &models.CompletionResult{
		Text:       extractText(msg.Content),
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: models.UsageRecord{
			InputTokens:         int(msg.Usage.InputTokens),
			CacheReadTokens:     int(msg.Usage.CacheReadInputTokens),
			CacheCreationTokens: int(msg.Usage.CacheCreationInputTokens),
			OutputTokens:        int(msg.Usage.OutputTokens),
		},
	}

	slog.Debug("completion request succeeded",
		"model", result.Model,
		"input_tokens", result.Usage.InputTokens,
		"cache_read_tokens", result.Usage.CacheReadTokens,
		"cache_creation_tokens", result.Usage.CacheCreationTokens,
		"output_tokens", result.Usage.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds())

	if result.Text == "" {
		return nil, errors.ErrEmptyResponse.WithContext("stop_reason", result.StopReason)
	}
	return result, nil
}

// buildParams maps a provider-agnostic request onto Messages API params.
// Cacheable system segments get an ephemeral cache breakpoint (5 minute TTL).
func buildParams(req models.CompletionRequest) sdk.MessageNewParams {
	system := make([]sdk.TextBlockParam, 0, len(req.System))
	for _, seg := range req.System {
		block := sdk.TextBlockParam{Text: seg.Text}
		if seg.Cacheable {
			block.CacheControl = sdk.NewCacheControlEphemeralParam()
		}
		system = append(system, block)
	}

	messages := make([]sdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == models.RoleAssistant {
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
	}

	return sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		System:    system,
		Messages:  messages,
	}
}

func extractText(blocks []sdk.ContentBlockUnion) string {
	var sb strings.Builder
	for _, block := range blocks {
		if block.Type != "text" {
			continue
		}
		sb.WriteString(block.Text)
	}
	return sb.String()
}

// classifyError turns an SDK error into an AppError with a failure reason.
// A cancellation by the caller is returned as is: it is not a request failure.
func classifyError(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *sdk.Error
	if stderrors.As(err, &apiErr) {
		switch status := apiErr.StatusCode; {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return errors.ErrAIAuth.WithError(err).WithContext("status", status)
		case status == http.StatusTooManyRequests:
			return errors.ErrAIRateLimited.WithError(err).WithContext("status", status)
		default:
			return errors.ErrAIUnknown.WithError(err).WithContext("status", status)
		}
	}

	if isNetworkError(err) {
		return errors.ErrAINetwork.WithError(err)
	}
	return errors.ErrAIUnknown.WithError(err)
}

func isNetworkError(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}
