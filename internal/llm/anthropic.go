package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const jsonInstruction = "\n\nRespond with a single valid JSON object and no other text."

// Anthropic calls the Claude Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a Claude provider. An empty baseURL uses the
// vendor endpoint. SDK-level retries are disabled.
func NewAnthropic(apiKey, model, baseURL string) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (a *Anthropic) Name() string  { return ProviderClaude }
func (a *Anthropic) Model() string { return a.model }

// Complete sends one user message. JSON mode has no native switch in the
// Messages API, so it is requested through the system prompt.
func (a *Anthropic) Complete(ctx context.Context, req Request) (Completion, error) {
	system := req.System
	if req.JSONMode {
		system += jsonInstruction
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("claude messages: %w", err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return Completion{
		Content:   content.String(),
		TokensIn:  int(msg.Usage.InputTokens),
		TokensOut: int(msg.Usage.OutputTokens),
	}, nil
}
