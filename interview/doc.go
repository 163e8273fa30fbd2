// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package interview drives the adaptive interview for a project.

Every operation first checks that the caller owns the project. A session
that belongs to a different project is reported as not found.

# Session Lifecycle

	Start → (NextQuestion → Submit) × n → complete

A session completes when its eighth response is recorded or when Complete is
called. Start returns the in-progress session if there is one, so retrying
it is safe. Submissions are rejected once a session is complete, when the
questionId was already answered or is not the current question, and when
the value is empty.

Completion percentage is 10 per accepted response, so a session that runs
to the cap reports 80.
*/
package interview
