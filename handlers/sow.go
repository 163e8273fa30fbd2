// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/sow"
)

type DocumentHandler struct {
	svc *sow.Service
}

func NewDocumentHandler(svc *sow.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// GenerateDocument handles POST /projects/{projectId}/sow
// Responds 202 as soon as the task is queued; poll the status route for progress.
func (h *DocumentHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Request(r.Context(), r.PathValue("projectId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusAccepted, models.GenerateDocumentResponse{
		TaskID: task.ID,
		Status: task.Status,
	})
}

// GetStatus handles GET /projects/{projectId}/sow/{taskId}/status
func (h *DocumentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Status(r.Context(), r.PathValue("projectId"), r.PathValue("taskId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, task)
}

// GetDocument handles GET /projects/{projectId}/sow/{taskId}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Document(r.Context(), r.PathValue("projectId"), r.PathValue("taskId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, doc)
}
