// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the sowgen API server.

sowgen interviews a client about a construction project with up to eight
adaptive questions, then generates a Scope of Work from the answers and
the project's uploaded documents.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	AUTH_SECRET=... ANTHROPIC_API_KEY=... DATABASE_URL=sowgen.db go run . serve

Or with flags:

	go run . serve -p 3318 -t postgres -d "postgres://..."

Issue a bearer token for local testing:

	go run . token --user client-1 --ttl 1h

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - AUTH_SECRET (--auth-secret): Bearer token signing secret
  - ANTHROPIC_API_KEY: Required when MODEL_PROVIDER is anthropic

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - UPLOAD_DIR (--uploads): Document storage root (default: uploads)
  - MODEL_PROVIDER (--model-provider): anthropic or claude-cli
  - MODEL_NAME (--model), MODEL_TIMEOUT
  - QUESTION_MAX_TOKENS, DOCUMENT_MAX_TOKENS
  - DOC_CAP_BYTES, CONTEXT_CAP_BYTES
  - WORKERS (--workers), QUEUE_SIZE, GENERATION_ESTIMATE
  - LOG_LEVEL, LOG_FORMAT (text or json)

A .env file in the working directory is loaded first.

# Architecture

  - handlers: HTTP request handlers (projects, interview, sow)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Auth, CORS, logging, JSON helpers
  - interview, sow: Interview and document generation services
  - questions: Question bank, validation and generation
  - assembler: Project context from uploaded documents
  - llm: Model invocation (Anthropic API or claude CLI)
  - tasks: Background generation queue
  - store, db: Persistence and schema
  - objectstore: Uploaded document storage
  - auth, apperr, cliparse, models: Shared plumbing

See package documentation for each component.
*/
package main
