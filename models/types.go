package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Project status constants
const (
	ProjectDraft             = "draft"
	ProjectInterviewing      = "interviewing"
	ProjectInterviewComplete = "interview_complete"
	ProjectSOWReady          = "sow_ready"
)

// Generation task status constants
const (
	TaskGenerating = "generating"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// Question type constants
const (
	QuestionText           = "text"
	QuestionMultipleChoice = "multiple_choice"
	QuestionNumber         = "number"
	QuestionBoolean        = "boolean"
	QuestionScale          = "scale"
)

// Interview limits
const (
	// MaxQuestions is the hard cap on interview length.
	MaxQuestions = 8
	// PercentPerQuestion is the completion credit for each accepted response.
	PercentPerQuestion = 10
)

// Request types

type CreateProjectRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

type SubmitResponseRequest struct {
	QuestionID string          `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

// Response types

type NextQuestionResponse struct {
	Question       Question `json:"question"`
	IsComplete     bool     `json:"isComplete"`
	Reasoning      string   `json:"reasoning"`
	IsAIGenerated  bool     `json:"isAIGenerated"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
}

type ProjectDetailResponse struct {
	Project   Project           `json:"project"`
	Documents []ProjectDocument `json:"documents"`
}

type GenerateDocumentResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// Domain types

type Project struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProjectDocument struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	ObjectKey   string    `json:"-"` // Never expose in JSON
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Type     string   `json:"type" yaml:"type"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool     `json:"required" yaml:"required"`
}

type Response struct {
	QuestionID   string          `json:"questionId"`
	QuestionText string          `json:"questionText,omitempty"` // As served by next-question
	Value        json.RawMessage `json:"value"`
	Timestamp    time.Time       `json:"timestamp"`
}

type InterviewSession struct {
	ID                   string     `json:"id"`
	ProjectID            string     `json:"projectId"`
	UserID               string     `json:"userId"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	Responses            []Response `json:"responses"`
	IsComplete           bool       `json:"isComplete"`
	CompletionPercentage int        `json:"completionPercentage"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type GenerationTask struct {
	ID                  string     `json:"id"`
	ProjectID           string     `json:"projectId"`
	OwnerID             string     `json:"ownerId"`
	Status              string     `json:"status"`
	Progress            int        `json:"progress"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	ErrorMessage        *string    `json:"errorMessage,omitempty"`
}

// IsTerminal reports whether no further status transitions are allowed.
func (t GenerationTask) IsTerminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed
}

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type GeneratedDocument struct {
	ID             string         `json:"id"`
	ProjectID      string         `json:"projectId"`
	OwnerID        string         `json:"ownerId"`
	Title          string         `json:"title"`
	Sections       []Section      `json:"sections"`
	ProjectDetails map[string]any `json:"projectDetails,omitempty"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	Version        int            `json:"version"`
}

// CompletionPercentage returns the progress credited for index accepted responses.
func CompletionPercentage(index int) int {
	return min(100, PercentPerQuestion*index)
}

// QuestionID is the identifier of the question asked at a zero-based index.
func QuestionID(index int) string {
	return "q" + strconv.Itoa(index+1)
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
