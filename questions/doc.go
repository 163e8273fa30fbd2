// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package questions produces interview questions.

# Question Bank

bank.yaml is embedded into the binary and holds eight fallback questions,
addressed by zero-based interview index:

	bank, err := questions.DefaultBank()
	q := bank.At(3)

Every entry passes Validate when the bank loads.

# Validation

Questions are a tagged union on Type:

  - multiple_choice: at least one non-blank option
  - text, number, boolean, scale: no options

Parse decodes a model reply strictly (unknown fields are rejected) and wraps
any failure in apperr.ErrResponseParse.

# Generation

	gen := questions.NewGenerator(invoker, bank, cfg.QuestionMaxTokens)
	next := gen.Next(ctx, projectContext, session.Responses, session.CurrentQuestionIndex)

Next never returns an error. A model or parse failure serves the bank
question for the same index with IsAIGenerated false and the cause in
FallbackReason. Question ids are always q1..q8 by index.
*/
package questions
