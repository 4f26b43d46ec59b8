package pitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// ProviderOpenAI is the registry id of the OpenAI provider.
const ProviderOpenAI = "openai"

const defaultOpenAIModel = openai.GPT4oMini

// OpenAI implements Provider over the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	config *Config
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
		logger: cfg.Logger.With("component", "pitch.openai"),
	}, nil
}

// Name returns the provider id.
func (o *OpenAI) Name() string {
	return ProviderOpenAI
}

// Complete generates a chat completion.
func (o *OpenAI) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.config.Model
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   o.config.MaxTokens,
		Temperature: float32(o.config.Temperature),
	})
	if err != nil {
		return "", o.translate(err)
	}

	if len(resp.Choices) == 0 {
		return "", transportError(ProviderOpenAI, "no choices returned", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// Validate lists available models to pre-flight the credential.
func (o *OpenAI) Validate(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return o.translate(err)
	}
	return nil
}

// Close releases resources. The underlying client is stateless.
func (o *OpenAI) Close() error {
	return nil
}

// translate converts go-openai errors into the gateway taxonomy so no
// provider-specific error type leaks past this boundary.
func (o *OpenAI) translate(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return authError(ProviderOpenAI, msg, err)
		default:
			// Rate limits and server-side failures are retryable transport errors.
			return transportError(ProviderOpenAI, msg, err)
		}
	}
	return transportError(ProviderOpenAI, err.Error(), err)
}

// Verify OpenAI implements Provider at compile time.
var _ Provider = (*OpenAI)(nil)
