// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/models"
)

const sessionColumns = `id, project_id, user_id, current_question_index, is_complete,
	completion_percentage, created_at, updated_at`

// CreateSession inserts a new session at index 0.
func (s *Store) CreateSession(ctx context.Context, sess *models.InterviewSession) error {
	now := s.now()
	sess.CurrentQuestionIndex = 0
	sess.CompletionPercentage = 0
	sess.IsComplete = false
	sess.Responses = []models.Response{}
	sess.CreatedAt = now
	sess.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interview_session (id, project_id, user_id, current_question_index, is_complete,
			completion_percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sess.ID, sess.ProjectID, sess.UserID, sess.CurrentQuestionIndex, sess.IsComplete,
		sess.CompletionPercentage, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return apperr.Persistence("insert session", err)
	}
	return nil
}

// GetSession loads a session and its responses.
func (s *Store) GetSession(ctx context.Context, id string) (*models.InterviewSession, error) {
	return s.loadSession(ctx, s.db, `SELECT `+sessionColumns+` FROM interview_session WHERE id = $1`, id)
}

// LatestSession returns the most recently created session for a project.
func (s *Store) LatestSession(ctx context.Context, projectID string) (*models.InterviewSession, error) {
	return s.loadSession(ctx, s.db, `
		SELECT `+sessionColumns+`
		FROM interview_session
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, projectID)
}

// SetPendingQuestion remembers the text of the question served at index so
// the answer to it can be stored alongside the question. It fails if the
// session has moved past index or is complete.
func (s *Store) SetPendingQuestion(ctx context.Context, sessionID string, index int, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_session SET pending_question = $1
		WHERE id = $2 AND current_question_index = $3 AND is_complete = $4
	`, text, sessionID, index, false)
	if err != nil {
		return apperr.Persistence("update pending question", err)
	}
	ok, err := expectOneRow(res, "update pending question")
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("session was updated concurrently, fetch the next question again")
	}
	return nil
}

// RecordResponse appends a response and advances the session by exactly one
// question. The session row update is guarded by the index read in the same
// transaction, so two concurrent submissions cannot both advance it.
func (s *Store) RecordResponse(ctx context.Context, sessionID string, resp models.Response) (*models.InterviewSession, error) {
	if resp.Timestamp.IsZero() {
		resp.Timestamp = s.now()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			projectID  string
			index      int
			isComplete bool
			pending    string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT project_id, current_question_index, is_complete, pending_question
			FROM interview_session WHERE id = $1
		`, sessionID).Scan(&projectID, &index, &isComplete, &pending)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("session")
		}
		if err != nil {
			return apperr.Persistence("query session", err)
		}

		if isComplete {
			return apperr.Validation("interview session is already complete")
		}

		var answered int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM interview_response WHERE session_id = $1 AND question_id = $2
		`, sessionID, resp.QuestionID).Scan(&answered)
		if err != nil {
			return apperr.Persistence("query responses", err)
		}
		if answered > 0 {
			return apperr.Validation("question %s has already been answered", resp.QuestionID)
		}
		if expected := models.QuestionID(index); resp.QuestionID != expected {
			return apperr.Validation("questionId %s does not match the current question %s", resp.QuestionID, expected)
		}

		// The stored question text is whatever was last served at this index.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interview_response (session_id, seq, question_id, question_text, value, answered_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sessionID, index, resp.QuestionID, pending, string(resp.Value), resp.Timestamp)
		if err != nil {
			return apperr.Persistence("insert response", err)
		}

		next := index + 1
		complete := next >= models.MaxQuestions
		res, err := tx.ExecContext(ctx, `
			UPDATE interview_session
			SET current_question_index = $1, completion_percentage = $2, is_complete = $3,
				pending_question = '', updated_at = $4
			WHERE id = $5 AND current_question_index = $6
		`, next, models.CompletionPercentage(next), complete, s.now(), sessionID, index)
		if err != nil {
			return apperr.Persistence("update session", err)
		}
		ok, err := expectOneRow(res, "update session")
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("session was updated concurrently, fetch the next question again")
		}

		if complete {
			return s.updateProjectStatus(ctx, tx, projectID, models.ProjectInterviewComplete)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// CompleteSession marks a session complete and moves its project to
// interview_complete. Completing an already complete session is a no-op
// apart from re-asserting the project status.
func (s *Store) CompleteSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var projectID string
		err := tx.QueryRowContext(ctx, `SELECT project_id FROM interview_session WHERE id = $1`, sessionID).Scan(&projectID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("session")
		}
		if err != nil {
			return apperr.Persistence("query session", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE interview_session SET is_complete = $1, updated_at = $2 WHERE id = $3 AND is_complete = $4
		`, true, s.now(), sessionID, false)
		if err != nil {
			return apperr.Persistence("complete session", err)
		}

		return s.updateProjectStatus(ctx, tx, projectID, models.ProjectInterviewComplete)
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

func (s *Store) loadSession(ctx context.Context, q querier, query string, arg string) (*models.InterviewSession, error) {
	var sess models.InterviewSession
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&sess.ID, &sess.ProjectID, &sess.UserID, &sess.CurrentQuestionIndex, &sess.IsComplete,
		&sess.CompletionPercentage, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("session")
	}
	if err != nil {
		return nil, apperr.Persistence("query session", err)
	}

	responses, err := s.loadResponses(ctx, q, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Responses = responses

	return &sess, nil
}

func (s *Store) loadResponses(ctx context.Context, q querier, sessionID string) ([]models.Response, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT question_id, question_text, value, answered_at
		FROM interview_response
		WHERE session_id = $1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, apperr.Persistence("query responses", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var (
			r     models.Response
			value string
		)
		if err := rows.Scan(&r.QuestionID, &r.QuestionText, &value, &r.Timestamp); err != nil {
			return nil, apperr.Persistence("scan response", err)
		}
		r.Value = json.RawMessage(value)
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate responses", err)
	}
	return responses, nil
}
