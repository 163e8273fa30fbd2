// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/models"
)

// Validate checks a question against the rules for its type tag.
// Only multiple_choice questions may carry options, and they must carry at
// least one non-blank option.
func Validate(q models.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}

	switch q.Type {
	case models.QuestionMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("multiple_choice question has no options")
		}
		for i, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("multiple_choice option %d is blank", i)
			}
		}
	case models.QuestionText, models.QuestionNumber, models.QuestionBoolean, models.QuestionScale:
		if len(q.Options) > 0 {
			return fmt.Errorf("%s question must not have options", q.Type)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	return nil
}

// modelReply is the object the model is asked to return.
type modelReply struct {
	Question   *models.Question `json:"question"`
	IsComplete bool             `json:"isComplete"`
	Reasoning  string           `json:"reasoning"`
}

// Parse extracts and validates a model reply. The reply must be exactly one
// JSON object; unknown fields, a missing question, or a question that fails
// Validate are all parse errors.
func Parse(raw string) (models.Question, bool, string, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var reply modelReply
	if err := dec.Decode(&reply); err != nil {
		return models.Question{}, false, "", fmt.Errorf("%w: %v", apperr.ErrResponseParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.Question{}, false, "", fmt.Errorf("%w: trailing data after reply object", apperr.ErrResponseParse)
	}
	if reply.Question == nil {
		return models.Question{}, false, "", fmt.Errorf("%w: reply has no question", apperr.ErrResponseParse)
	}
	if err := Validate(*reply.Question); err != nil {
		return models.Question{}, false, "", fmt.Errorf("%w: %v", apperr.ErrResponseParse, err)
	}

	return *reply.Question, reply.IsComplete, reply.Reasoning, nil
}

// ValidateValue checks that a submitted response value is present.
func ValidateValue(value json.RawMessage) error {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return apperr.Validation("value is required")
	}
	if !json.Valid(trimmed) {
		return apperr.Validation("value must be valid JSON")
	}

	var s string
	if json.Unmarshal(trimmed, &s) == nil && strings.TrimSpace(s) == "" {
		return apperr.Validation("value must not be blank")
	}
	return nil
}
