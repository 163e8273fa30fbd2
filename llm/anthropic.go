// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicInvoker calls the Messages API.
type AnthropicInvoker struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicInvoker creates an invoker for model. Retries are disabled;
// callers fall back or fail the task instead.
func NewAnthropicInvoker(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *AnthropicInvoker {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &AnthropicInvoker{
		client:  anthropic.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

func (a *AnthropicInvoker) Invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", invocationError("anthropic returned status %d", apiErr.StatusCode)
		}
		return "", invocationError("anthropic request: %v", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", invocationError("anthropic response had no text content")
	}

	return b.String(), nil
}
