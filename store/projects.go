// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/models"
)

// CreateProject inserts a project in draft status.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	now := s.now()
	p.Status = models.ProjectDraft
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project (id, owner_id, name, description, requirements, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.OwnerID, p.Name, p.Description, p.Requirements, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return apperr.Persistence("insert project", err)
	}
	return nil
}

// GetProject loads a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, requirements, status, created_at, updated_at
		FROM project
		WHERE id = $1
	`, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Requirements, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("project")
	}
	if err != nil {
		return nil, apperr.Persistence("query project", err)
	}
	return &p, nil
}

// OwnedProject loads a project on behalf of userID. A missing project and a
// project owned by someone else are indistinguishable: both are
// apperr.ErrAccessDenied.
func (s *Store) OwnedProject(ctx context.Context, id, userID string) (*models.Project, error) {
	p, err := s.GetProject(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, apperr.ErrAccessDenied
	}
	return p, nil
}

// UpdateProjectStatus moves a project to a new lifecycle status.
func (s *Store) UpdateProjectStatus(ctx context.Context, id, status string) error {
	return s.updateProjectStatus(ctx, s.db, id, status)
}

func (s *Store) updateProjectStatus(ctx context.Context, q querier, id, status string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE project SET status = $1, updated_at = $2 WHERE id = $3
	`, status, s.now(), id)
	if err != nil {
		return apperr.Persistence("update project status", err)
	}
	ok, err := expectOneRow(res, "update project status")
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("project")
	}
	return nil
}

// AddDocument records metadata for an uploaded project document.
func (s *Store) AddDocument(ctx context.Context, d *models.ProjectDocument) error {
	d.UploadedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_document (id, project_id, filename, content_type, object_key, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.ID, d.ProjectID, d.Filename, d.ContentType, d.ObjectKey, d.Size, d.UploadedAt)
	if err != nil {
		return apperr.Persistence("insert project document", err)
	}
	return nil
}

// ListDocuments returns a project's documents in upload order.
func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]models.ProjectDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, filename, content_type, object_key, size, uploaded_at
		FROM project_document
		WHERE project_id = $1
		ORDER BY uploaded_at, id
	`, projectID)
	if err != nil {
		return nil, apperr.Persistence("query project documents", err)
	}
	defer rows.Close()

	docs := []models.ProjectDocument{}
	for rows.Next() {
		var d models.ProjectDocument
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Filename, &d.ContentType, &d.ObjectKey, &d.Size, &d.UploadedAt); err != nil {
			return nil, apperr.Persistence("scan project document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate project documents", err)
	}
	return docs, nil
}
