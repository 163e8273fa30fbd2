// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package interview

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/assembler"
	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/questions"
	"github.com/danielhkuo/sowgen/store"
)

// Service runs interview sessions for project owners.
type Service struct {
	store     *store.Store
	assembler *assembler.Assembler
	generator *questions.Generator
}

func NewService(st *store.Store, asm *assembler.Assembler, gen *questions.Generator) *Service {
	return &Service{store: st, assembler: asm, generator: gen}
}

// Start opens a session for the project. If the latest session is still in
// progress it is returned instead and created is false.
func (s *Service) Start(ctx context.Context, projectID string, who auth.Identity) (sess *models.InterviewSession, created bool, err error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, false, err
	}

	latest, err := s.store.LatestSession(ctx, projectID)
	switch {
	case err == nil && !latest.IsComplete:
		return latest, false, nil
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return nil, false, err
	}

	sess = &models.InterviewSession{
		ID:        auth.NewID(),
		ProjectID: projectID,
		UserID:    who.UserID,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, false, err
	}
	if err := s.store.UpdateProjectStatus(ctx, projectID, models.ProjectInterviewing); err != nil {
		return nil, false, err
	}

	slog.Info("interview started", "project_id", projectID, "session_id", sess.ID)
	return sess, true, nil
}

// Current returns the project's most recent session.
func (s *Service) Current(ctx context.Context, projectID string, who auth.Identity) (*models.InterviewSession, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}
	return s.store.LatestSession(ctx, projectID)
}

// NextQuestion produces the question for the session's current index.
func (s *Service) NextQuestion(ctx context.Context, projectID, sessionID string, who auth.Identity) (*models.NextQuestionResponse, error) {
	project, err := s.store.OwnedProject(ctx, projectID, who.UserID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, projectID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsComplete {
		return nil, apperr.Validation("interview session is already complete")
	}

	docs, err := s.store.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	projectContext := s.assembler.Assemble(ctx, project, docs)
	next := s.generator.Next(ctx, projectContext, sess.Responses, sess.CurrentQuestionIndex)

	// The answer is stored against the text actually shown to the client.
	if err := s.store.SetPendingQuestion(ctx, sessionID, sess.CurrentQuestionIndex, next.Question.Text); err != nil {
		return nil, err
	}

	slog.Info("question served",
		"session_id", sessionID,
		"question_id", next.Question.ID,
		"ai_generated", next.IsAIGenerated,
		"is_complete", next.IsComplete,
	)
	return &next, nil
}

// Submit records an answer and advances the session by one question.
func (s *Service) Submit(ctx context.Context, projectID, sessionID string, who auth.Identity, req models.SubmitResponseRequest) (*models.InterviewSession, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		return nil, apperr.Validation("questionId is required")
	}
	if err := questions.ValidateValue(req.Value); err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, projectID, sessionID); err != nil {
		return nil, err
	}

	sess, err := s.store.RecordResponse(ctx, sessionID, models.Response{
		QuestionID: req.QuestionID,
		Value:      req.Value,
	})
	if err != nil {
		return nil, err
	}

	if sess.IsComplete {
		slog.Info("interview complete", "project_id", projectID, "session_id", sessionID)
	}
	return sess, nil
}

// Complete ends the session early. Completing twice is harmless.
func (s *Service) Complete(ctx context.Context, projectID, sessionID string, who auth.Identity) (*models.InterviewSession, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, projectID, sessionID); err != nil {
		return nil, err
	}

	sess, err := s.store.CompleteSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	slog.Info("interview completed explicitly", "project_id", projectID, "session_id", sessionID)
	return sess, nil
}

// session loads a session and hides sessions of other projects.
func (s *Service) session(ctx context.Context, projectID, sessionID string) (*models.InterviewSession, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ProjectID != projectID {
		return nil, apperr.NotFound("session")
	}
	return sess, nil
}
