// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/sowgen/assembler"
	"github.com/danielhkuo/sowgen/cliparse"
	"github.com/danielhkuo/sowgen/handlers"
	"github.com/danielhkuo/sowgen/interview"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/objectstore"
	"github.com/danielhkuo/sowgen/questions"
	"github.com/danielhkuo/sowgen/sow"
	"github.com/danielhkuo/sowgen/store"
	"github.com/danielhkuo/sowgen/tasks"
)

// NewRouter wires the services and registers every route. The returned queue
// runs document generation and must be closed on shutdown.
func NewRouter(db *sql.DB, cfg cliparse.Config, model llm.Invoker) (*http.ServeMux, *tasks.Queue, error) {
	st := store.New(db)

	objects, err := objectstore.NewFileStore(cfg.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	bank, err := questions.DefaultBank()
	if err != nil {
		return nil, nil, fmt.Errorf("load question bank: %w", err)
	}

	asm := assembler.New(objects, cfg.DocCapBytes, cfg.ContextCapBytes)
	interviews := interview.NewService(st, asm, questions.NewGenerator(model, bank, cfg.QuestionMaxTokens))
	documents := sow.NewService(st, asm, model, cfg.DocumentMaxTokens, cfg.GenerationEstimate)

	queue := tasks.NewQueue(context.Background(), cfg.QueueSize, cfg.Workers, documents.Run)
	documents.SetQueue(queue)

	mux := http.NewServeMux()

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(st, objects, cfg)
	interviewHandler := handlers.NewInterviewHandler(interviews)
	documentHandler := handlers.NewDocumentHandler(documents)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.AuthSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Projects
	mux.HandleFunc("POST /projects", authed(projectHandler.CreateProject))
	mux.HandleFunc("GET /projects/{projectId}", authed(projectHandler.GetProject))
	mux.HandleFunc("POST /projects/{projectId}/documents", authed(projectHandler.UploadDocument))

	// Interview
	mux.HandleFunc("POST /projects/{projectId}/interview", authed(interviewHandler.StartSession))
	mux.HandleFunc("GET /projects/{projectId}/interview", authed(interviewHandler.GetSession))
	mux.HandleFunc("POST /projects/{projectId}/interview/{sessionId}/next-question", authed(interviewHandler.NextQuestion))
	mux.HandleFunc("POST /projects/{projectId}/interview/{sessionId}/responses", authed(interviewHandler.SubmitResponse))
	mux.HandleFunc("POST /projects/{projectId}/interview/{sessionId}/complete", authed(interviewHandler.CompleteSession))

	// Scope of Work generation
	mux.HandleFunc("POST /projects/{projectId}/sow", authed(documentHandler.GenerateDocument))
	mux.HandleFunc("GET /projects/{projectId}/sow/{taskId}/status", authed(documentHandler.GetStatus))
	mux.HandleFunc("GET /projects/{projectId}/sow/{taskId}", authed(documentHandler.GetDocument))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sowgen API v1"))
	})

	return mux, queue, nil
}
