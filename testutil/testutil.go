// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/cliparse"
	"github.com/danielhkuo/sowgen/db"
	"github.com/danielhkuo/sowgen/models"
)

// TestSecret signs bearer tokens in tests
const TestSecret = "test-auth-secret"

// SetupTestDB creates a fresh SQLite database with the full schema.
// The file lives in the test's temp dir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()

	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "test.db",
		DatabaseType:       "sqlite",
		AuthSecret:         TestSecret,
		UploadDir:          t.TempDir(),
		ModelProvider:      cliparse.ProviderAnthropic,
		ModelName:          "test-model",
		AnthropicAPIKey:    "test-key",
		ModelTimeout:       5 * time.Second,
		QuestionMaxTokens:  1024,
		DocumentMaxTokens:  8192,
		DocCapBytes:        10240,
		ContextCapBytes:    65536,
		Workers:            1,
		QueueSize:          8,
		GenerationEstimate: 2 * time.Minute,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// CreateTestProject inserts a project owned by ownerID and returns its ID.
// status should be one of the models.Project* constants.
func CreateTestProject(t *testing.T, conn *sql.DB, ownerID, status string) string {
	t.Helper()

	projectID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO project (id, owner_id, name, description, requirements, status, created_at, updated_at)
		VALUES ($1, $2, 'Kitchen Extension', 'Single storey rear extension', 'Open plan kitchen, bi-fold doors', $3, $4, $5)
	`, projectID, ownerID, status, now, now)
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}

	return projectID
}

// CreateTestSession inserts an interview session at the given index.
// Answered questions are stored as "Question N?" with the answer "answer".
// A session at MaxQuestions or beyond is stored as complete.
func CreateTestSession(t *testing.T, conn *sql.DB, projectID, userID string, index int) string {
	t.Helper()

	sessionID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO interview_session (id, project_id, user_id, current_question_index, is_complete,
			completion_percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sessionID, projectID, userID, index, index >= models.MaxQuestions, models.CompletionPercentage(index), now, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	for i := 0; i < index; i++ {
		_, err := conn.Exec(`
			INSERT INTO interview_response (session_id, seq, question_id, question_text, value, answered_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sessionID, i, models.QuestionID(i), "Question "+strconv.Itoa(i+1)+"?", `"answer"`, now)
		if err != nil {
			t.Fatalf("Failed to create test response: %v", err)
		}
	}

	return sessionID
}

// Token issues a bearer token for userID, valid for an hour
func Token(t *testing.T, userID string) string {
	t.Helper()

	token, err := auth.IssueToken(auth.Identity{UserID: userID, UserType: "client"}, TestSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// AuthHeaders returns the Authorization header for userID
func AuthHeaders(t *testing.T, userID string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + Token(t, userID)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest creates a multipart request with a single "file" part
func MakeUploadRequest(t *testing.T, path, filename string, content []byte, headers map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
