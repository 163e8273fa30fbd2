// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sow

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/questions"
)

// SectionTitles are the sections every Scope of Work contains, in order.
var SectionTitles = []string{
	"Executive Summary",
	"Detailed Scope of Work",
	"Materials and Specifications",
	"Programme and Milestones",
	"Costs and Payment Schedule",
	"Quality and Compliance",
	"Health, Safety and Environment",
	"Contract Conditions",
}

type documentReply struct {
	Title          string           `json:"title"`
	Sections       []models.Section `json:"sections"`
	ProjectDetails map[string]any   `json:"projectDetails"`
}

// ParseDocument decodes and checks a model reply. The reply must be a single
// JSON object with a title and exactly one non-empty section per entry of
// SectionTitles, in order. Section titles are matched ignoring case and
// surrounding space, and stored under their canonical names.
func ParseDocument(raw string) (*models.GeneratedDocument, error) {
	dec := json.NewDecoder(strings.NewReader(llm.CleanJSON(raw)))

	var reply documentReply
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrResponseParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document object", apperr.ErrResponseParse)
	}

	if strings.TrimSpace(reply.Title) == "" {
		return nil, fmt.Errorf("%w: document title is empty", apperr.ErrResponseParse)
	}
	if len(reply.Sections) != len(SectionTitles) {
		return nil, fmt.Errorf("%w: expected %d sections, got %d", apperr.ErrResponseParse, len(SectionTitles), len(reply.Sections))
	}
	sections := make([]models.Section, len(SectionTitles))
	for i, sec := range reply.Sections {
		if !strings.EqualFold(strings.TrimSpace(sec.Title), SectionTitles[i]) {
			return nil, fmt.Errorf("%w: section %d is %q, expected %q", apperr.ErrResponseParse, i+1, sec.Title, SectionTitles[i])
		}
		if strings.TrimSpace(sec.Content) == "" {
			return nil, fmt.Errorf("%w: section %q has no content", apperr.ErrResponseParse, SectionTitles[i])
		}
		sections[i] = models.Section{Title: SectionTitles[i], Content: sec.Content}
	}

	details := reply.ProjectDetails
	if details == nil {
		details = map[string]any{}
	}

	return &models.GeneratedDocument{
		Title:          strings.TrimSpace(reply.Title),
		Sections:       sections,
		ProjectDetails: details,
	}, nil
}

// BuildPrompt renders the document generation prompt.
func BuildPrompt(project *models.Project, sess *models.InterviewSession, projectContext string) string {
	var sb strings.Builder

	sb.WriteString("You are a quantity surveyor writing a Scope of Work for a construction project.\n")
	sb.WriteString("Use the interview answers and project material below. Be specific; where information\n")
	sb.WriteString("is missing, state the assumption you are making.\n\n")

	sb.WriteString(projectContext)
	sb.WriteString("\n")

	sb.WriteString("## Interview Responses\n")
	if len(sess.Responses) == 0 {
		sb.WriteString("(none)\n")
	}
	sb.WriteString(questions.FormatAnswers(sess.Responses))
	sb.WriteString("\n")

	sb.WriteString("## Required Sections\n")
	for i, title := range SectionTitles {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, title))
	}
	sb.WriteString("\n")

	sb.WriteString("## Output Format\n")
	sb.WriteString("Respond with a single JSON object and nothing else:\n")
	sb.Write(outputExample(project.Name))
	sb.WriteString("\nInclude exactly the sections listed above, in that order, each with non-empty content.\n")
	sb.WriteString("projectDetails holds key facts such as budget, dates and location.\n")

	return sb.String()
}

// outputExample is the reply shape shown to the model, with the canonical
// section titles filled in.
func outputExample(projectName string) []byte {
	example := documentReply{
		Title:          "Scope of Work: " + projectName,
		Sections:       make([]models.Section, len(SectionTitles)),
		ProjectDetails: map[string]any{},
	}
	for i, title := range SectionTitles {
		example.Sections[i] = models.Section{Title: title, Content: "..."}
	}
	b, _ := json.Marshal(example)
	return b
}
