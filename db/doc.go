// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver by database type and pings the connection:

	conn, err := db.Open("postgres", "postgres://...") // github.com/lib/pq
	conn, err := db.Open("sqlite", "data/sowgen.db")    // modernc.org/sqlite

SQLite connections get WAL journaling, foreign keys and a busy timeout, and
the pool is limited to a single connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is limited to the subset PostgreSQL and SQLite share; queries use
$N placeholders, which both drivers accept.

# Tables

  - project: owner, requirements, lifecycle status
  - project_document: uploaded file metadata (bytes live in the object store)
  - interview_session: question index and completion
  - interview_response: ordered answers, one per (session, seq)
  - generation_task: document generation lifecycle
  - generated_document: sections stored as JSON text

# Relationships

	project 1──* project_document
	project 1──* interview_session
	interview_session 1──* interview_response
	project 1──* generation_task
	generation_task 1──0..1 generated_document

Sessions, responses, tasks and documents are never deleted.

# Constraints

  - interview_response: UNIQUE (session_id, question_id) rejects re-answers
  - generation_task.status IN ('generating', 'completed', 'failed')
  - generated_document.id references its generation_task
*/
package db
