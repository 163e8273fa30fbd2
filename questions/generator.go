// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/models"
)

const instructions = `You are interviewing a client to gather the information needed to write a
Scope of Work for a construction project. Ask exactly one question at a time,
choosing the most useful next question given the project context and the
answers so far. Do not repeat questions that have already been answered.`

const outputFormat = `## Output Format
Respond with a single JSON object and nothing else:
{
  "question": {
    "id": "string",
    "text": "the question to ask",
    "type": "text | multiple_choice | number | boolean | scale",
    "options": ["only for multiple_choice, at least one"],
    "required": true
  },
  "isComplete": false,
  "reasoning": "why this question matters for the Scope of Work"
}
Omit "options" unless type is multiple_choice.`

// Generator produces the next interview question, from the model when it
// cooperates and from the bank otherwise.
type Generator struct {
	model     llm.Invoker
	bank      *Bank
	maxTokens int
}

func NewGenerator(model llm.Invoker, bank *Bank, maxTokens int) *Generator {
	return &Generator{model: model, bank: bank, maxTokens: maxTokens}
}

// Next returns the question for the zero-based index. It never fails: any
// model or parse error yields the bank question for the same index.
// Completion is decided by the question cap alone; the model's own
// completion flag is only logged.
func (g *Generator) Next(ctx context.Context, projectContext string, prior []models.Response, index int) models.NextQuestionResponse {
	isComplete := index+1 >= models.MaxQuestions

	raw, err := g.model.Invoke(ctx, BuildPrompt(projectContext, prior, index), g.maxTokens)
	if err != nil {
		return g.fallback(index, isComplete, err)
	}

	q, modelComplete, reasoning, err := Parse(llm.CleanJSON(raw))
	if err != nil {
		return g.fallback(index, isComplete, err)
	}

	if modelComplete != isComplete {
		slog.Info("model completion flag ignored", "index", index, "model_complete", modelComplete, "complete", isComplete)
	}

	q.ID = models.QuestionID(index)
	return models.NextQuestionResponse{
		Question:      q,
		IsComplete:    isComplete,
		Reasoning:     reasoning,
		IsAIGenerated: true,
	}
}

func (g *Generator) fallback(index int, isComplete bool, cause error) models.NextQuestionResponse {
	slog.Warn("using fallback question", "index", index, "error", cause)

	q := g.bank.At(index)
	q.ID = models.QuestionID(index)
	return models.NextQuestionResponse{
		Question:       q,
		IsComplete:     isComplete,
		Reasoning:      "Standard question from the fallback bank",
		IsAIGenerated:  false,
		FallbackReason: cause.Error(),
	}
}

// BuildPrompt renders the question prompt for the given interview state.
func BuildPrompt(projectContext string, prior []models.Response, index int) string {
	var sb strings.Builder

	sb.WriteString(instructions)
	sb.WriteString("\n\n")

	sb.WriteString(projectContext)
	sb.WriteString("\n")

	if len(prior) > 0 {
		sb.WriteString("## Answers So Far\n")
		sb.WriteString(FormatAnswers(prior))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Current Question\nThis is question %d of at most %d.\n", index+1, models.MaxQuestions))
	if index+1 >= models.MaxQuestions {
		sb.WriteString("This is the final question; make it count.\n")
	}
	sb.WriteString("\n")

	sb.WriteString(outputFormat)
	return sb.String()
}

// FormatAnswers renders responses as question and answer pairs, one pair
// per response in the order given.
func FormatAnswers(responses []models.Response) string {
	var sb strings.Builder
	for _, r := range responses {
		text := strings.TrimSpace(r.QuestionText)
		if text == "" {
			text = "(question text not recorded)"
		}
		sb.WriteString(fmt.Sprintf("- %s. %s\n  Answer: %s\n", r.QuestionID, text, string(r.Value)))
	}
	return sb.String()
}
