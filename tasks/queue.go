// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tasks runs background jobs on a fixed pool of workers fed by a
// bounded in-process queue.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrQueueClosed = errors.New("task queue is closed")
)

// Handler processes one job, identified by its task id.
type Handler func(ctx context.Context, taskID string)

// Queue is a buffered job channel drained by a fixed number of workers.
// All methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	closed  bool
	jobs    chan string
	wg      sync.WaitGroup
	handler Handler
	ctx     context.Context
}

// NewQueue starts workers goroutines that call handler for each enqueued
// task id. ctx is passed to every handler call.
func NewQueue(ctx context.Context, size, workers int, handler Handler) *Queue {
	q := &Queue{
		jobs:    make(chan string, max(size, 1)),
		handler: handler,
		ctx:     ctx,
	}

	for i := 0; i < max(workers, 1); i++ {
		q.wg.Add(1)
		go q.work(i)
	}

	return q
}

// Enqueue schedules a task without blocking.
func (q *Queue) Enqueue(taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- taskID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued and running jobs to finish.
// Calling Close more than once is safe.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) work(id int) {
	defer q.wg.Done()

	for taskID := range q.jobs {
		q.run(id, taskID)
	}
}

func (q *Queue) run(worker int, taskID string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task handler panicked", "worker", worker, "task_id", taskID, "panic", r)
		}
	}()

	q.handler(q.ctx, taskID)
}
