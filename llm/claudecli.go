// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ClaudeCLIInvoker runs the claude binary in print mode and reads the JSON
// envelope it writes to stdout. maxTokens is not enforced by the CLI.
type ClaudeCLIInvoker struct {
	Binary  string
	Model   string
	Timeout time.Duration
}

type cliEnvelope struct {
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

func (c *ClaudeCLIInvoker) Invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := []string{"-p", prompt, "--output-format", "json"}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}

	out, err := exec.CommandContext(ctx, c.Binary, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", invocationError("claude exited %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", invocationError("running claude: %v", err)
	}

	var env cliEnvelope
	if err := json.Unmarshal(out, &env); err != nil {
		return "", invocationError("parsing claude output: %v", err)
	}
	if env.IsError {
		return "", invocationError("claude returned error: %s", env.Result)
	}

	return strings.TrimSpace(env.Result), nil
}
