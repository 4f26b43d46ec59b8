package pitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/careerbuddy/go-careerbuddy/internal/httpc"
)

// ProviderHuggingFace is the registry id of the HuggingFace provider.
const ProviderHuggingFace = "huggingface"

const (
	defaultHuggingFaceBaseURL = "https://router.huggingface.co/v1"
	defaultHuggingFaceModel   = "meta-llama/Meta-Llama-3-8B-Instruct"
)

// HuggingFace implements Provider over the HuggingFace inference router,
// which exposes an OpenAI-compatible chat completions API.
type HuggingFace struct {
	baseURL string
	apiKey  string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewHuggingFace creates a HuggingFace provider.
func NewHuggingFace(opts ...Option) (*HuggingFace, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultHuggingFaceBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultHuggingFaceModel
	}

	return &HuggingFace{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "pitch.huggingface"),
	}, nil
}

// Name returns the provider id.
func (h *HuggingFace) Name() string {
	return ProviderHuggingFace
}

// Complete generates a chat completion.
func (h *HuggingFace) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = h.config.Model
	}

	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}

	resp, err := h.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", transportError(ProviderHuggingFace, err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", h.parseError(resp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", transportError(ProviderHuggingFace, fmt.Sprintf("decode response: %v", err), err)
	}

	if len(result.Choices) == 0 {
		return "", transportError(ProviderHuggingFace, "no choices returned", nil)
	}

	return result.Choices[0].Message.Content, nil
}

// Validate lists available models to pre-flight the credential.
func (h *HuggingFace) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/models", nil)
	if err != nil {
		return transportError(ProviderHuggingFace, fmt.Sprintf("create request: %v", err), err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.http.Do(req)
	if err != nil {
		return transportError(ProviderHuggingFace, fmt.Sprintf("list models: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return h.parseError(resp)
	}
	return nil
}

// Close releases resources.
func (h *HuggingFace) Close() error {
	h.http.CloseIdleConnections()
	return nil
}

// post makes a POST request with the provider's credential.
func (h *HuggingFace) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	return h.http.Do(req)
}

// parseError reads an error response and maps it into the gateway taxonomy.
func (h *HuggingFace) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	msg := fmt.Sprintf("API error %d: %s", resp.StatusCode, message)
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return authError(ProviderHuggingFace, msg, nil)
	}
	return transportError(ProviderHuggingFace, msg, nil)
}

// Verify HuggingFace implements Provider at compile time.
var _ Provider = (*HuggingFace)(nil)
