// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielhkuo/sowgen/assembler"
	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/interview"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/objectstore"
	"github.com/danielhkuo/sowgen/questions"
	"github.com/danielhkuo/sowgen/sow"
	"github.com/danielhkuo/sowgen/store"
	"github.com/danielhkuo/sowgen/tasks"
	"github.com/danielhkuo/sowgen/testutil"
)

// testEnv holds the handlers over one test database
type testEnv struct {
	db        *sql.DB
	store     *store.Store
	queue     *tasks.Queue
	projects  *ProjectHandler
	interview *InterviewHandler
	documents *DocumentHandler
}

// offlineModel fails every call, so questions come from the bank
func offlineModel(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", errors.New("model offline")
}

// documentModel answers document prompts with a valid document and
// fails question prompts.
func documentModel(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens < 8192 {
		return "", errors.New("model offline")
	}
	sections := make([]models.Section, len(sow.SectionTitles))
	for i, title := range sow.SectionTitles {
		sections[i] = models.Section{Title: title, Content: "Details for " + title}
	}
	b, _ := json.Marshal(map[string]any{"title": "Scope of Work", "sections": sections})
	return string(b), nil
}

func setupHandlers(t *testing.T, model llm.InvokerFunc) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	st := store.New(conn)

	objects, err := objectstore.NewFileStore(cfg.UploadDir)
	if err != nil {
		t.Fatalf("Failed to create object store: %v", err)
	}
	bank, err := questions.DefaultBank()
	if err != nil {
		t.Fatalf("Failed to load question bank: %v", err)
	}

	asm := assembler.New(objects, cfg.DocCapBytes, cfg.ContextCapBytes)
	interviews := interview.NewService(st, asm, questions.NewGenerator(model, bank, cfg.QuestionMaxTokens))
	documents := sow.NewService(st, asm, model, cfg.DocumentMaxTokens, time.Minute)
	queue := tasks.NewQueue(context.Background(), cfg.QueueSize, cfg.Workers, documents.Run)
	documents.SetQueue(queue)
	t.Cleanup(queue.Close)

	return &testEnv{
		db:        conn,
		store:     st,
		queue:     queue,
		projects:  NewProjectHandler(st, objects, cfg),
		interview: NewInterviewHandler(interviews),
		documents: NewDocumentHandler(documents),
	}
}

// asUser attaches the caller identity and path values that RequireAuth and
// the mux would normally provide.
func asUser(req *http.Request, userID string, pathValues map[string]string) *http.Request {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), auth.Identity{UserID: userID, UserType: "client"}))
}
