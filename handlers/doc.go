// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the sowgen API.

# Handler Types

Each handler is a thin struct over a service or the store:

  - ProjectHandler: Project creation, lookup and document upload
  - InterviewHandler: Interview sessions, questions and answers
  - DocumentHandler: Scope of Work generation and retrieval

Handlers are created via constructor functions:

	projectHandler := handlers.NewProjectHandler(st, objects, cfg)
	interviewHandler := handlers.NewInterviewHandler(interviewService)

Every handler expects the caller identity placed in the request context by
middleware.RequireAuth. Service errors are mapped to status codes by
middleware.WriteError, so handlers only validate request shape.

# Project Lifecycle

Projects move through draft → interviewing → interview_complete → sow_ready.

	POST /projects                        → CreateProject
	POST /projects/{projectId}/documents  → UploadDocument
	POST /projects/{projectId}/interview  → StartSession

# Interview Flow

	POST .../interview/{sessionId}/next-question → NextQuestion
	POST .../interview/{sessionId}/responses     → SubmitResponse

The session completes after eight answers, or early via CompleteSession.

# Document Generation

	POST /projects/{projectId}/sow → GenerateDocument (202 with taskId)

Generation runs on the background queue. Clients poll GetStatus until the
task is completed or failed, then fetch the result with GetDocument.
*/
package handlers
