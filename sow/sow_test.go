// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/sowgen/apperr"
	"github.com/danielhkuo/sowgen/assembler"
	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/objectstore"
	"github.com/danielhkuo/sowgen/store"
	"github.com/danielhkuo/sowgen/tasks"
	"github.com/danielhkuo/sowgen/testutil"
)

var owner = auth.Identity{UserID: "owner", UserType: "client"}

// validReply returns a well-formed eight-section document reply.
func validReply() string {
	return replyWithSections(func(int, *models.Section) {})
}

// replyWithSections is validReply with each section passed through edit.
func replyWithSections(edit func(i int, sec *models.Section)) string {
	sections := make([]models.Section, len(SectionTitles))
	for i, title := range SectionTitles {
		sections[i] = models.Section{Title: title, Content: "Content for " + title}
		edit(i, &sections[i])
	}
	b, _ := json.Marshal(map[string]any{
		"title":          "Scope of Work: Kitchen Extension",
		"sections":       sections,
		"projectDetails": map[string]any{"budget": 45000},
	})
	return string(b)
}

type fixture struct {
	svc   *Service
	store *store.Store
	conn  *sql.DB
	queue *tasks.Queue
}

func setup(t *testing.T, model llm.InvokerFunc) *fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	objects, err := objectstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	svc := NewService(st, assembler.New(objects, 10240, 65536), model, 8192, 2*time.Minute)
	q := tasks.NewQueue(context.Background(), 8, 1, svc.Run)
	svc.SetQueue(q)
	t.Cleanup(q.Close)

	return &fixture{svc: svc, store: st, conn: conn, queue: q}
}

func (f *fixture) countTasks(t *testing.T, projectID string) int {
	t.Helper()
	var n int
	if err := f.conn.QueryRow("SELECT COUNT(*) FROM generation_task WHERE project_id = $1", projectID).Scan(&n); err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	return n
}

func TestRequest_CompletesDocument(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "Here is the document:\n```json\n" + validReply() + "\n```", nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	task, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if task.Status != models.TaskGenerating {
		t.Errorf("Expected status %s, got %s", models.TaskGenerating, task.Status)
	}
	if task.EstimatedCompletion == nil {
		t.Error("Expected estimated completion")
	}

	f.queue.Close()

	got, err := f.svc.Status(ctx, projectID, task.ID, owner)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got.Status != models.TaskCompleted || got.Progress != 100 {
		t.Errorf("Expected completed at 100, got %s at %d", got.Status, got.Progress)
	}

	doc, err := f.svc.Document(ctx, projectID, task.ID, owner)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(doc.Sections) != len(SectionTitles) {
		t.Errorf("Expected %d sections, got %d", len(SectionTitles), len(doc.Sections))
	}
	if doc.Version != 1 {
		t.Errorf("Expected version 1, got %d", doc.Version)
	}
	if doc.ProjectDetails["budget"] != float64(45000) {
		t.Errorf("Expected project details to round-trip, got %v", doc.ProjectDetails)
	}

	project, _ := f.store.GetProject(ctx, projectID)
	if project.Status != models.ProjectSOWReady {
		t.Errorf("Expected project status %s, got %s", models.ProjectSOWReady, project.Status)
	}
}

func TestRequest_ModelFailure(t *testing.T) {
	calls := 0
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		return "", errors.New("model invocation failed: upstream 529")
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	first, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	// Wait for the first task without closing the queue.
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := f.store.GetTask(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetTask() error = %v", err)
		}
		if got.IsTerminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for task to finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	second, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Second Request() error = %v", err)
	}
	if second.ID == first.ID {
		t.Error("Expected a new task for the retry")
	}

	f.queue.Close()

	for _, id := range []string{first.ID, second.ID} {
		got, err := f.svc.Status(ctx, projectID, id, owner)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if got.Status != models.TaskFailed {
			t.Errorf("Expected failed, got %s", got.Status)
		}
		if got.ErrorMessage == nil || *got.ErrorMessage == "" {
			t.Error("Expected a non-empty error message")
		}
		if _, err := f.svc.Document(ctx, projectID, id, owner); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Expected no document for failed task, got %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("Expected one model call per task and no retries, got %d", calls)
	}
}

func TestRequest_MalformedDocument(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return `{"title":"SOW","sections":[{"title":"Executive Summary","content":"Only one"}]}`, nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	task, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	f.queue.Close()

	got, _ := f.store.GetTask(ctx, task.ID)
	if got.Status != models.TaskFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}
	if got.ErrorMessage == nil || !strings.Contains(*got.ErrorMessage, "sections") {
		t.Errorf("Expected error message about sections, got %v", got.ErrorMessage)
	}

	project, _ := f.store.GetProject(ctx, projectID)
	if project.Status == models.ProjectSOWReady {
		t.Error("Failed generation must not mark the project sow_ready")
	}
}

func TestRequest_IncompleteInterview(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		t.Error("Model must not be called")
		return "", nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewing)

	if _, err := f.svc.Request(ctx, projectID, owner); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation without a session, got %v", err)
	}

	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, 3)
	if _, err := f.svc.Request(ctx, projectID, owner); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation for incomplete session, got %v", err)
	}

	if n := f.countTasks(t, projectID); n != 0 {
		t.Errorf("Expected no tasks, got %d", n)
	}
}

func TestStatus_NonOwner(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return validReply(), nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	task, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	f.queue.Close()

	intruder := auth.Identity{UserID: "intruder"}
	if _, err := f.svc.Status(ctx, projectID, task.ID, intruder); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
	if _, err := f.svc.Document(ctx, projectID, task.ID, intruder); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for document, got %v", err)
	}
	if _, err := f.svc.Request(ctx, projectID, intruder); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for request, got %v", err)
	}
}

func TestStatus_TaskOfOtherProject(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return validReply(), nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	otherID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectDraft)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	task, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	f.queue.Close()

	if _, err := f.svc.Status(ctx, otherID, task.ID, owner); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Status(ctx, projectID, "no-such-task", owner); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing task, got %v", err)
	}
}

func TestRequest_QueueClosed(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return validReply(), nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	f.queue.Close()
	if _, err := f.svc.Request(ctx, projectID, owner); !errors.Is(err, tasks.ErrQueueClosed) {
		t.Fatalf("Expected ErrQueueClosed, got %v", err)
	}

	var status string
	if err := f.conn.QueryRow("SELECT status FROM generation_task WHERE project_id = $1", projectID).Scan(&status); err != nil {
		t.Fatalf("Failed to query task: %v", err)
	}
	if status != models.TaskFailed {
		t.Errorf("Expected unscheduled task to be failed, got %s", status)
	}
}

func TestPromptIncludesResponsesAndSections(t *testing.T) {
	var prompt string
	f := setup(t, func(ctx context.Context, p string, maxTokens int) (string, error) {
		prompt = p
		if maxTokens != 8192 {
			t.Errorf("Expected document max tokens 8192, got %d", maxTokens)
		}
		return validReply(), nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	if _, err := f.svc.Request(ctx, projectID, owner); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	f.queue.Close()

	for _, want := range append([]string{"Kitchen Extension", "- q8. Question 8?\n  Answer: \"answer\"", "Open plan kitchen"}, SectionTitles...) {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", validReply(), false},
		{"not json", "I could not write the document", true},
		{"no title", strings.Replace(validReply(), `"title":"Scope of Work: Kitchen Extension"`, `"title":""`, 1), true},
		{"empty section content", strings.Replace(validReply(), `"Content for Contract Conditions"`, `"  "`, 1), true},
		{"too few sections", `{"title":"T","sections":[]}`, true},
		{"fenced section content", replyWithSections(func(i int, sec *models.Section) {
			sec.Content = "See:\n```\nitem list\n```\n"
		}), false},
		{"unexpected section titles", replyWithSections(func(i int, sec *models.Section) {
			sec.Title = "Random"
		}), true},
		{"sections out of order", replyWithSections(func(i int, sec *models.Section) {
			sec.Title = SectionTitles[len(SectionTitles)-1-i]
		}), true},
		{"two documents", validReply() + "\n" + validReply(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrResponseParse) {
					t.Errorf("Expected ErrResponseParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDocument() error = %v", err)
			}
			if len(doc.Sections) != len(SectionTitles) {
				t.Errorf("Expected %d sections, got %d", len(SectionTitles), len(doc.Sections))
			}
		})
	}
}

func TestParseDocument_KeepsFencedContent(t *testing.T) {
	content := "Items:\n```\n- demolition\n- groundworks\n```\nSee drawings."
	raw := replyWithSections(func(i int, sec *models.Section) {
		if i == 1 {
			sec.Content = content
		}
	})

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.Sections[1].Content != content {
		t.Errorf("Expected content to be kept verbatim, got %q", doc.Sections[1].Content)
	}
	if doc.Sections[7].Title != "Contract Conditions" {
		t.Errorf("Expected all sections, last is %q", doc.Sections[7].Title)
	}
}

func TestParseDocument_NormalizesSectionTitles(t *testing.T) {
	raw := replyWithSections(func(i int, sec *models.Section) {
		sec.Title = "  " + strings.ToLower(sec.Title) + " "
	})

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	for i, sec := range doc.Sections {
		if sec.Title != SectionTitles[i] {
			t.Errorf("Section %d: expected title %q, got %q", i, SectionTitles[i], sec.Title)
		}
	}
}

func TestRequest_PanicFailsTask(t *testing.T) {
	f := setup(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		var seen map[string]bool
		seen[prompt] = true
		return validReply(), nil
	})
	ctx := context.Background()

	projectID := testutil.CreateTestProject(t, f.conn, owner.UserID, models.ProjectInterviewComplete)
	testutil.CreateTestSession(t, f.conn, projectID, owner.UserID, models.MaxQuestions)

	task, err := f.svc.Request(ctx, projectID, owner)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	f.queue.Close()

	got, err := f.svc.Status(ctx, projectID, task.ID, owner)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got.Status != models.TaskFailed {
		t.Errorf("Expected status %s, got %s", models.TaskFailed, got.Status)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != "internal error during generation" {
		t.Errorf("Expected internal error message, got %v", got.ErrorMessage)
	}

	project, _ := f.store.GetProject(ctx, projectID)
	if project.Status == models.ProjectSOWReady {
		t.Error("Failed generation must not mark the project sow_ready")
	}
}

func TestPromptOutputExampleIsValidJSON(t *testing.T) {
	project := &models.Project{Name: `The "Big" Barn \ Annex`}
	prompt := BuildPrompt(project, &models.InterviewSession{}, "## Project\n")

	var example string
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, `{"title"`) {
			example = line
			break
		}
	}
	if example == "" {
		t.Fatalf("Prompt has no output example:\n%s", prompt)
	}

	var reply documentReply
	if err := json.Unmarshal([]byte(example), &reply); err != nil {
		t.Fatalf("Output example is not valid JSON: %v\n%s", err, example)
	}
	if reply.Title != `Scope of Work: The "Big" Barn \ Annex` {
		t.Errorf("Expected project name in example title, got %q", reply.Title)
	}
	if len(reply.Sections) != len(SectionTitles) {
		t.Errorf("Expected %d example sections, got %d", len(SectionTitles), len(reply.Sections))
	}
}
