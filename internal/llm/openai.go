package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 8 << 20

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAI creates a provider posting to <baseURL>/chat/completions. A
// nil client uses http.DefaultClient; deadlines come from the context.
func NewOpenAI(apiKey, model, baseURL string, client *http.Client) *OpenAI {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:     apiKey,
		model:      model,
		httpClient: client,
	}
}

func (o *OpenAI) Name() string  { return ProviderOpenAI }
func (o *OpenAI) Model() string { return o.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (Completion, error) {
	payload := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Completion{}, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw[:min(len(raw), 1024)]))
		}
		return Completion{}, fmt.Errorf("%w: %s: %s", ErrProviderStatus, resp.Status, msg)
	}

	if !gjson.ValidBytes(raw) {
		return Completion{}, fmt.Errorf("%w: body is not JSON", ErrMalformed)
	}
	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return Completion{}, fmt.Errorf("%w: no choices", ErrMalformed)
	}

	return Completion{
		Content:   content.String(),
		TokensIn:  int(gjson.GetBytes(raw, "usage.prompt_tokens").Int()),
		TokensOut: int(gjson.GetBytes(raw, "usage.completion_tokens").Int()),
	}, nil
}
