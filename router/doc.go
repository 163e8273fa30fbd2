// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the sowgen API.

# Route Registration

NewRouter builds the services, starts the generation queue and returns a
configured http.ServeMux:

	mux, queue, err := router.NewRouter(db, cfg, invoker)
	defer queue.Close()

# Endpoints

Unauthenticated:

	GET /health
	GET /

Projects:

	POST /projects                       - Create project
	GET  /projects/{projectId}           - Project and its documents
	POST /projects/{projectId}/documents - Upload document (multipart "file")

Interview:

	POST /projects/{projectId}/interview                             - Start or resume
	GET  /projects/{projectId}/interview                             - Latest session
	POST /projects/{projectId}/interview/{sessionId}/next-question   - Next question
	POST /projects/{projectId}/interview/{sessionId}/responses       - Submit answer
	POST /projects/{projectId}/interview/{sessionId}/complete        - End early

Scope of Work:

	POST /projects/{projectId}/sow                 - Queue generation (202)
	GET  /projects/{projectId}/sow/{taskId}/status - Task status
	GET  /projects/{projectId}/sow/{taskId}        - Generated document

Every project route is wrapped in middleware.RequireAuth and expects an
Authorization: Bearer token.
*/
package router
