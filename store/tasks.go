// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/models"
)

// CreateTask inserts a task in the generating state with progress 0.
func (s *Store) CreateTask(ctx context.Context, t *models.GenerationTask) error {
	now := s.now()
	t.Status = models.TaskGenerating
	t.Progress = 0
	t.ErrorMessage = nil
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_task (id, project_id, owner_id, status, progress, estimated_completion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.ProjectID, t.OwnerID, t.Status, t.Progress, t.EstimatedCompletion, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return apperr.Persistence("insert task", err)
	}
	return nil
}

// GetTask loads a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (*models.GenerationTask, error) {
	var (
		t         models.GenerationTask
		estimated sql.NullTime
		errMsg    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, owner_id, status, progress, estimated_completion, error_message, created_at, updated_at
		FROM generation_task
		WHERE id = $1
	`, id).Scan(&t.ID, &t.ProjectID, &t.OwnerID, &t.Status, &t.Progress, &estimated, &errMsg, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("task")
	}
	if err != nil {
		return nil, apperr.Persistence("query task", err)
	}

	if estimated.Valid {
		ts := estimated.Time
		t.EstimatedCompletion = &ts
	}
	if errMsg.Valid {
		msg := errMsg.String
		t.ErrorMessage = &msg
	}
	return &t, nil
}

// SetTaskProgress records coarse progress for a task that is still generating.
func (s *Store) SetTaskProgress(ctx context.Context, id string, progress int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generation_task SET progress = $1, updated_at = $2 WHERE id = $3 AND status = $4
	`, progress, s.now(), id, models.TaskGenerating)
	if err != nil {
		return apperr.Persistence("update task progress", err)
	}
	ok, err := expectOneRow(res, "update task progress")
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskFinished
	}
	return nil
}

// FailTask moves a generating task to failed. Terminal tasks are untouched
// and ErrTaskFinished is returned.
func (s *Store) FailTask(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generation_task SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4 AND status = $5
	`, models.TaskFailed, message, s.now(), id, models.TaskGenerating)
	if err != nil {
		return apperr.Persistence("fail task", err)
	}
	ok, err := expectOneRow(res, "fail task")
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskFinished
	}
	return nil
}

// CompleteTask persists the document and completes its task in a single
// transaction: either both happen or neither does. doc.ID must be the task id.
// Version and GeneratedAt are assigned here.
func (s *Store) CompleteTask(ctx context.Context, doc *models.GeneratedDocument) error {
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	details := doc.ProjectDetails
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal project details: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		res, err := tx.ExecContext(ctx, `
			UPDATE generation_task SET status = $1, progress = $2, updated_at = $3 WHERE id = $4 AND status = $5
		`, models.TaskCompleted, 100, now, doc.ID, models.TaskGenerating)
		if err != nil {
			return apperr.Persistence("complete task", err)
		}
		ok, err := expectOneRow(res, "complete task")
		if err != nil {
			return err
		}
		if !ok {
			return ErrTaskFinished
		}

		// Updating the project row first holds its lock until commit, so
		// concurrent completions for one project read versions in turn.
		// UNIQUE (project_id, version) rejects anything that slips past.
		if err := s.updateProjectStatus(ctx, tx, doc.ProjectID, models.ProjectSOWReady); err != nil {
			return err
		}

		var previous int
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version), 0) FROM generated_document WHERE project_id = $1
		`, doc.ProjectID).Scan(&previous)
		if err != nil {
			return apperr.Persistence("query document version", err)
		}

		doc.Version = previous + 1
		doc.GeneratedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO generated_document (id, project_id, owner_id, title, sections, project_details, version, generated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, doc.ID, doc.ProjectID, doc.OwnerID, doc.Title, string(sections), string(detailsJSON), doc.Version, doc.GeneratedAt)
		if err != nil {
			return apperr.Persistence("insert document", err)
		}
		return nil
	})
}

// GetDocument loads a generated document by its task id.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.GeneratedDocument, error) {
	var (
		doc      models.GeneratedDocument
		sections string
		details  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, owner_id, title, sections, project_details, version, generated_at
		FROM generated_document
		WHERE id = $1
	`, id).Scan(&doc.ID, &doc.ProjectID, &doc.OwnerID, &doc.Title, &sections, &details, &doc.Version, &doc.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("document")
	}
	if err != nil {
		return nil, apperr.Persistence("query document", err)
	}

	if err := json.Unmarshal([]byte(sections), &doc.Sections); err != nil {
		return nil, apperr.Persistence("decode document sections", err)
	}
	if err := json.Unmarshal([]byte(details), &doc.ProjectDetails); err != nil {
		return nil, apperr.Persistence("decode project details", err)
	}
	return &doc, nil
}
