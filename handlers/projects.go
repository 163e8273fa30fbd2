// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/cliparse"
	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/objectstore"
	"github.com/danielhkuo/sowgen/store"
)

// maxUploadBytes caps a single document upload.
const maxUploadBytes = 32 << 20

type ProjectHandler struct {
	store   *store.Store
	objects *objectstore.FileStore
	cfg     cliparse.Config
}

func NewProjectHandler(st *store.Store, objects *objectstore.FileStore, cfg cliparse.Config) *ProjectHandler {
	return &ProjectHandler{store: st, objects: objects, cfg: cfg}
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	project := &models.Project{
		ID:           auth.NewID(),
		OwnerID:      who.UserID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Requirements: req.Requirements,
	}
	if err := h.store.CreateProject(r.Context(), project); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("project created", "project_id", project.ID, "owner", who.UserID)

	middleware.JSONResponse(w, http.StatusCreated, project)
}

// GetProject handles GET /projects/{projectId}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	project, err := h.store.OwnedProject(r.Context(), r.PathValue("projectId"), who.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	docs, err := h.store.ListDocuments(r.Context(), project.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProjectDetailResponse{
		Project:   *project,
		Documents: docs,
	})
}

// UploadDocument handles POST /projects/{projectId}/documents
// Expects a multipart form with a single "file" part.
func (h *ProjectHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	project, err := h.store.OwnedProject(r.Context(), r.PathValue("projectId"), who.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &models.ProjectDocument{
		ID:          auth.NewID(),
		ProjectID:   project.ID,
		Filename:    header.Filename,
		ContentType: contentType,
	}
	doc.ObjectKey = objectstore.Key(project.ID, doc.ID, header.Filename)

	size, err := h.objects.Put(r.Context(), doc.ObjectKey, file)
	if err != nil {
		slog.Error("failed to store document", "project_id", project.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store document")
		return
	}
	doc.Size = size

	if err := h.store.AddDocument(r.Context(), doc); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("document uploaded", "project_id", project.ID, "document_id", doc.ID, "size", size)

	middleware.JSONResponse(w, http.StatusCreated, doc)
}

// identity returns the caller set by middleware.RequireAuth, writing a 401
// if the route was registered without it.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	who, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return auth.Identity{}, false
	}
	return who, true
}
