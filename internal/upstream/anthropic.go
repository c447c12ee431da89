package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mlorentedev/correcteur/internal/relayerr"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024
	APIVersion       = "2023-06-01"

	// logged upstream error bodies are cut to this many bytes
	maxLoggedBody = 512
)

// Anthropic forwards messages to the Anthropic Messages API.
type Anthropic struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Claude (%s)", a.model())
}

func (a *Anthropic) model() string {
	if a.Model == "" {
		return DefaultModel
	}
	return a.Model
}

func (a *Anthropic) maxTokens() int {
	if a.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return a.MaxTokens
}

func (a *Anthropic) client() *http.Client {
	if a.Client == nil {
		return http.DefaultClient
	}
	return a.Client
}

// Complete issues exactly one POST /v1/messages. Failures are tagged
// UpstreamUnavailable when the request never got a response, and
// UpstreamRejected when the response was not usable.
func (a *Anthropic) Complete(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model(),
		MaxTokens: a.maxTokens(),
		Messages:  []anthropicMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return "", relayerr.New(relayerr.Internal, "anthropic: marshal request", err)
	}

	baseURL := a.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/v1/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", relayerr.New(relayerr.Internal, "anthropic: create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", APIVersion)

	resp, err := a.client().Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "anthropic request failed", "error", err)
		return "", relayerr.New(relayerr.UpstreamUnavailable, errorMessage, fmt.Errorf("anthropic: request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		slog.ErrorContext(ctx, "anthropic API error",
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return "", relayerr.New(relayerr.UpstreamRejected, errorMessage, fmt.Errorf("anthropic: unexpected status %d", resp.StatusCode))
	}

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", relayerr.New(relayerr.UpstreamRejected, errorMessage, fmt.Errorf("anthropic: decode response: %w", err))
	}
	if len(msgResp.Content) == 0 {
		return "", relayerr.New(relayerr.UpstreamRejected, errorMessage, errors.New("anthropic: empty response content"))
	}

	return msgResp.Content[0].Text, nil
}

// Available reports whether an API key is configured. A missing key is only
// detected upstream, as an authentication failure.
func (a *Anthropic) Available() bool {
	return a.APIKey != ""
}
