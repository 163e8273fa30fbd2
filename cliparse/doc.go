// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(args)

A .env file in the working directory is loaded first (godotenv). Values that
are already present in the environment are not overwritten.

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type (sqlite or postgres)
	-uploads         Upload directory
	-auth-secret     Bearer token signing secret
	-model-provider  anthropic or claude-cli
	-model           Model name
	-workers         Document generation workers

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p (default 3318)
	DATABASE_URL    → -d (required)
	DATABASE_TYPE   → -t (default sqlite)
	UPLOAD_DIR      → -uploads (default uploads)
	AUTH_SECRET     → -auth-secret (required)
	MODEL_PROVIDER  → -model-provider (default anthropic)
	MODEL_NAME      → -model
	WORKERS         → -workers (default 2)

Environment only:

	ANTHROPIC_API_KEY    required for the anthropic provider
	MODEL_TIMEOUT        per model call (default 90s)
	QUESTION_MAX_TOKENS  default 1024
	DOCUMENT_MAX_TOKENS  default 8192
	DOC_CAP_BYTES        per uploaded document in a prompt (default 10240)
	CONTEXT_CAP_BYTES    all uploaded documents in a prompt (default 65536)
	QUEUE_SIZE           buffered generation jobs (default 64)
	GENERATION_ESTIMATE  advisory estimatedCompletion offset (default 2m)
	LOG_LEVEL            debug, info, warn, error
	LOG_FORMAT           text or json

CLI flags take precedence over environment variables.
*/
package cliparse
