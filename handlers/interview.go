// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/sowgen/interview"
	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/models"
)

type InterviewHandler struct {
	svc *interview.Service
}

func NewInterviewHandler(svc *interview.Service) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

// StartSession handles POST /projects/{projectId}/interview
// Returns 201 for a new session and 200 when resuming one in progress.
func (h *InterviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	sess, created, err := h.svc.Start(r.Context(), r.PathValue("projectId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, sess)
}

// GetSession handles GET /projects/{projectId}/interview
func (h *InterviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.Current(r.Context(), r.PathValue("projectId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sess)
}

// NextQuestion handles POST /projects/{projectId}/interview/{sessionId}/next-question
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	next, err := h.svc.NextQuestion(r.Context(), r.PathValue("projectId"), r.PathValue("sessionId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, next)
}

// SubmitResponse handles POST /projects/{projectId}/interview/{sessionId}/responses
func (h *InterviewHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sess, err := h.svc.Submit(r.Context(), r.PathValue("projectId"), r.PathValue("sessionId"), who, req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sess)
}

// CompleteSession handles POST /projects/{projectId}/interview/{sessionId}/complete
func (h *InterviewHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.Complete(r.Context(), r.PathValue("projectId"), r.PathValue("sessionId"), who)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sess)
}
