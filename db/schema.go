// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// The statements stay within the subset shared by PostgreSQL and SQLite.
// Timestamps are written by the application in UTC.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS project (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		requirements TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'interviewing', 'interview_complete', 'sow_ready')),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_owner_id ON project(owner_id)`,

	`CREATE TABLE IF NOT EXISTS project_document (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES project(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		object_key TEXT NOT NULL UNIQUE,
		size BIGINT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_document_project_id ON project_document(project_id)`,

	`CREATE TABLE IF NOT EXISTS interview_session (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES project(id),
		user_id TEXT NOT NULL,
		current_question_index INTEGER NOT NULL DEFAULT 0 CHECK (current_question_index >= 0),
		is_complete BOOLEAN NOT NULL DEFAULT FALSE,
		completion_percentage INTEGER NOT NULL DEFAULT 0 CHECK (completion_percentage >= 0 AND completion_percentage <= 100),
		pending_question TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_session_project_id ON interview_session(project_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS interview_response (
		session_id TEXT NOT NULL REFERENCES interview_session(id),
		seq INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		question_text TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL,
		answered_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, seq),
		UNIQUE (session_id, question_id)
	)`,

	`CREATE TABLE IF NOT EXISTS generation_task (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES project(id),
		owner_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'generating' CHECK (status IN ('generating', 'completed', 'failed')),
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress >= 0 AND progress <= 100),
		estimated_completion TIMESTAMP,
		error_message TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generation_task_project_id ON generation_task(project_id)`,

	`CREATE TABLE IF NOT EXISTS generated_document (
		id TEXT PRIMARY KEY REFERENCES generation_task(id),
		project_id TEXT NOT NULL REFERENCES project(id),
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		sections TEXT NOT NULL,
		project_details TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		UNIQUE (project_id, version)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_document_project_id ON generated_document(project_id)`,
}
