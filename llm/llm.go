// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/cliparse"
)

// Invoker sends a prompt to a generative model and returns its raw text reply.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

// New builds the invoker selected by cfg.ModelProvider.
func New(cfg cliparse.Config) (Invoker, error) {
	switch cfg.ModelProvider {
	case cliparse.ProviderAnthropic:
		return NewAnthropicInvoker(cfg.AnthropicAPIKey, cfg.ModelName, cfg.ModelTimeout), nil
	case cliparse.ProviderClaudeCLI:
		return &ClaudeCLIInvoker{Binary: "claude", Model: cfg.ModelName, Timeout: cfg.ModelTimeout}, nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.ModelProvider)
	}
}

// invocationError marks err as a model invocation failure.
func invocationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrModelInvocation, fmt.Sprintf(format, args...))
}

// CleanJSON extracts a JSON object from model output that may be wrapped in
// markdown code fences or surrounded by prose. Output that is already valid
// JSON is returned as is, so fences inside string values survive.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) {
		return s
	}

	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		// Skip a language tag on the fence line.
		if nl := strings.Index(s, "\n"); nl != -1 && nl < 20 {
			s = s[nl+1:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}

	// Prefer '{"' so braces in prose are not mistaken for the object start.
	start := strings.Index(s, `{"`)
	if start == -1 {
		start = strings.Index(s, "{")
	}
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}

	return s
}
