// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/sowgen/models"
)

//go:embed bank.yaml
var bankYAML []byte

// Bank is the ordered fallback question list.
type Bank struct {
	questions []models.Question
}

// DefaultBank decodes the embedded question bank.
func DefaultBank() (*Bank, error) {
	return LoadBank(bankYAML)
}

// LoadBank decodes a YAML list of questions and validates each entry.
func LoadBank(data []byte) (*Bank, error) {
	var qs []models.Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}
	for i, q := range qs {
		if err := Validate(q); err != nil {
			return nil, fmt.Errorf("question bank entry %d: %w", i, err)
		}
	}
	return &Bank{questions: qs}, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question for a zero-based interview index. Indexes past
// the end repeat the last question.
func (b *Bank) At(index int) models.Question {
	i := min(max(index, 0), len(b.questions)-1)
	q := b.questions[i]
	q.Options = append([]string(nil), q.Options...)
	return q
}
