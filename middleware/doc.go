// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (duration_ms).

# Authentication

RequireAuth verifies the Authorization bearer token and stores the caller
in the request context:

	mux.HandleFunc("GET /projects/{projectId}", middleware.WithLogging(
		middleware.RequireAuth(cfg.AuthSecret, h.GetProject)))

	id, ok := middleware.IdentityFrom(r.Context())

Missing, malformed, tampered or expired tokens get 401 before the handler runs.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err) // status from the apperr taxonomy

# Client IP Extraction

	ip := middleware.GetClientIP(r)
*/
package middleware
