// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/assembler"
	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/store"
)

// Progress checkpoints reported while a task runs.
const (
	progressInvoking = 50
	progressDone     = 100
)

// Enqueuer schedules a task for a worker.
type Enqueuer interface {
	Enqueue(taskID string) error
}

// Service requests, runs and reports on document generation tasks.
type Service struct {
	store     *store.Store
	assembler *assembler.Assembler
	model     llm.Invoker
	queue     Enqueuer
	maxTokens int
	estimate  time.Duration
}

func NewService(st *store.Store, asm *assembler.Assembler, model llm.Invoker, maxTokens int, estimate time.Duration) *Service {
	return &Service{
		store:     st,
		assembler: asm,
		model:     model,
		maxTokens: maxTokens,
		estimate:  estimate,
	}
}

// SetQueue attaches the queue Request hands tasks to. The queue's handler is
// normally Run, so the two are wired after both exist.
func (s *Service) SetQueue(q Enqueuer) {
	s.queue = q
}

// Request creates a generation task for a project whose latest interview is
// complete and hands it to the queue. It returns as soon as the task exists.
func (s *Service) Request(ctx context.Context, projectID string, who auth.Identity) (*models.GenerationTask, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}

	sess, err := s.store.LatestSession(ctx, projectID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validation("interview has not been started")
	}
	if err != nil {
		return nil, err
	}
	if !sess.IsComplete {
		return nil, apperr.Validation("interview is not complete")
	}

	eta := time.Now().UTC().Add(s.estimate)
	task := &models.GenerationTask{
		ID:                  auth.NewID(),
		ProjectID:           projectID,
		OwnerID:             who.UserID,
		EstimatedCompletion: &eta,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	if s.queue == nil {
		return nil, s.abandon(ctx, task, errors.New("no task queue configured"))
	}
	if err := s.queue.Enqueue(task.ID); err != nil {
		return nil, s.abandon(ctx, task, err)
	}

	slog.Info("document generation queued", "project_id", projectID, "task_id", task.ID)
	return task, nil
}

// abandon fails a task that never reached a worker.
func (s *Service) abandon(ctx context.Context, task *models.GenerationTask, cause error) error {
	msg := fmt.Sprintf("could not schedule generation: %v", cause)
	if err := s.store.FailTask(ctx, task.ID, msg); err != nil {
		slog.Error("failed to mark unscheduled task failed", "task_id", task.ID, "error", err)
	}
	return fmt.Errorf("schedule task %s: %w", task.ID, cause)
}

// Run generates the document for a task. Every outcome is recorded on the
// task itself, so Run has nothing to return. A panic during generation
// fails the task.
func (s *Service) Run(ctx context.Context, taskID string) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("document generation panicked", "task_id", taskID, "panic", r, "duration", time.Since(start))
			s.fail(ctx, taskID, "internal error during generation")
		}
	}()

	if err := s.generate(ctx, taskID); err != nil {
		slog.Error("document generation failed", "task_id", taskID, "error", err, "duration", time.Since(start))
		s.fail(ctx, taskID, err.Error())
		return
	}

	slog.Info("document generated", "task_id", taskID, "duration", time.Since(start))
}

// fail records a worker-side failure. It runs even if ctx was cancelled.
func (s *Service) fail(ctx context.Context, taskID, message string) {
	err := s.store.FailTask(context.WithoutCancel(ctx), taskID, message)
	if err != nil && !errors.Is(err, store.ErrTaskFinished) {
		slog.Error("failed to record task failure", "task_id", taskID, "error", err)
	}
}

func (s *Service) generate(ctx context.Context, taskID string) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if task.IsTerminal() {
		return store.ErrTaskFinished
	}

	project, err := s.store.GetProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	sess, err := s.store.LatestSession(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("load interview: %w", err)
	}
	if !sess.IsComplete {
		return apperr.Validation("interview is no longer complete")
	}
	docs, err := s.store.ListDocuments(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	prompt := BuildPrompt(project, sess, s.assembler.Assemble(ctx, project, docs))

	if err := s.store.SetTaskProgress(ctx, taskID, progressInvoking); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	raw, err := s.model.Invoke(ctx, prompt, s.maxTokens)
	if err != nil {
		return err
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return err
	}
	doc.ID = task.ID
	doc.ProjectID = task.ProjectID
	doc.OwnerID = task.OwnerID

	if err := s.store.CompleteTask(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Status returns a task of the caller's project.
func (s *Service) Status(ctx context.Context, projectID, taskID string, who auth.Identity) (*models.GenerationTask, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ProjectID != projectID {
		return nil, apperr.NotFound("task")
	}
	return task, nil
}

// Document returns the generated document of a completed task.
func (s *Service) Document(ctx context.Context, projectID, taskID string, who auth.Identity) (*models.GeneratedDocument, error) {
	if _, err := s.store.OwnedProject(ctx, projectID, who.UserID); err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if doc.ProjectID != projectID {
		return nil, apperr.NotFound("document")
	}
	return doc, nil
}
