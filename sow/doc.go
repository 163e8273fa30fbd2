// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sow generates Scope of Work documents from completed interviews.

# Requesting

Request checks ownership, requires the project's latest interview session to
be complete, creates a task in the generating state and hands its id to the
queue. It does not wait for the model.

	svc := sow.NewService(st, asm, invoker, cfg.DocumentMaxTokens, cfg.GenerationEstimate)
	q := tasks.NewQueue(ctx, cfg.QueueSize, cfg.Workers, svc.Run)
	svc.SetQueue(q)

A task that cannot be queued is failed immediately.

# Running

Run is the queue handler. It loads the task, project, interview and
documents, builds the prompt, moves progress to 50 and calls the model once.
The reply must carry a title and the eight sections in SectionTitles, each
with content. On success the document, the task's completed status and the
project's sow_ready status are written in one transaction. Any failure marks
the task failed with the error text; nothing is retried.

# Tracking

Status and Document are read-only. Both check ownership before looking at
the task, so a caller who does not own the project gets access denied even
for a valid task id.
*/
package sow
