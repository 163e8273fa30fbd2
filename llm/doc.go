// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package llm invokes generative models.

# Providers

	inv, err := llm.New(cfg) // by MODEL_PROVIDER

  - anthropic: the Messages API via github.com/anthropics/anthropic-sdk-go
  - claude-cli: `claude -p <prompt> --output-format json`, reading the result
    field of the envelope

Every failure is wrapped with apperr.ErrModelInvocation. Neither provider
retries; the interview falls back to the question bank and document
generation fails the task.

# Output Cleanup

Models often wrap JSON in code fences or prose. CleanJSON strips both:

	var out reply
	err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &out)

# Testing

InvokerFunc turns a closure into an Invoker:

	fake := llm.InvokerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return `{"question": {...}}`, nil
	})
*/
package llm
