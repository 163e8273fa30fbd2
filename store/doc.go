// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the SQL persistence layer for projects, interview sessions,
generation tasks and generated documents.

	s := store.New(conn)
	p := &models.Project{ID: auth.NewID(), OwnerID: userID, Name: "Loft conversion"}
	err := s.CreateProject(ctx, p)

Missing rows come back as apperr.ErrNotFound and driver failures as
apperr.ErrPersistence.

# Transactions

Multi-row changes run inside a single transaction:

  - RecordResponse: insert the response, advance the index, and on the final
    question mark the session and project complete
  - CompleteSession: mark the session complete and move the project on
  - CompleteTask: complete the task, insert the document, and mark the project
    sow_ready

The index update in RecordResponse is conditional on the index read at the
start of the transaction. A competing submission that lost the race gets a
validation error and leaves no partial state.

# Task Transitions

Task updates only match rows still in the generating status. Once a task is
completed or failed, SetTaskProgress, FailTask and CompleteTask return
ErrTaskFinished.
*/
package store
