// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreateProjectRequest: name, description, requirements
  - SubmitResponseRequest: questionId, value (any JSON value)

# Response Types

  - NextQuestionResponse: question, isComplete, reasoning, isAIGenerated, fallbackReason
  - GenerateDocumentResponse: taskId, status
  - ErrorResponse: error, message

# Domain Types

  - Project: owner, requirements and lifecycle status
  - ProjectDocument: uploaded supporting material (bytes live in the object store)
  - InterviewSession: question index, ordered responses, completion
  - Question: one interview question, discriminated by Type
  - GenerationTask: lifecycle of one document generation attempt
  - GeneratedDocument: the eight-section Scope of Work

# Session Arithmetic

	CompletionPercentage(n) = min(100, 10*n)
	complete when n == MaxQuestions (8)

Question ids are derived from the zero-based index: QuestionID(0) == "q1".

# Constants

Project status:

	ProjectDraft             = "draft"
	ProjectInterviewing      = "interviewing"
	ProjectInterviewComplete = "interview_complete"
	ProjectSOWReady          = "sow_ready"

Task status (generating is the only non-terminal state):

	TaskGenerating = "generating"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"

Question types:

	text, multiple_choice, number, boolean, scale
*/
package models
