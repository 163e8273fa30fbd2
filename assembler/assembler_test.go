// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assembler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/danielhkuo/sowgen/models"
)

// memStore is an in-memory objectstore.Getter.
type memStore map[string][]byte

func (m memStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}

func testProject() *models.Project {
	return &models.Project{
		ID:           "p1",
		Name:         "Warehouse Refit",
		Description:  "Replace racking and lighting",
		Requirements: "Minimal downtime",
	}
}

func TestAssemble_CapsAndOmitsFailures(t *testing.T) {
	const docCap = 10 * 1024

	objects := memStore{
		"p1/a": bytes.Repeat([]byte("a"), 50*1024),
		"p1/c": bytes.Repeat([]byte("c"), 50*1024),
		"p1/d": bytes.Repeat([]byte("d"), 50*1024),
	}
	docs := []models.ProjectDocument{
		{ID: "a", Filename: "a.txt", ObjectKey: "p1/a"},
		{ID: "b", Filename: "b.txt", ObjectKey: "p1/missing"},
		{ID: "c", Filename: "c.txt", ObjectKey: "p1/c"},
		{ID: "d", Filename: "d.txt", ObjectKey: "p1/d"},
	}

	got := New(objects, docCap, 0).Assemble(context.Background(), testProject(), docs)

	for _, ch := range []string{"a", "c", "d"} {
		n := strings.Count(got, ch+ch+ch+ch)
		contribution := strings.Count(got, ch) - strings.Count(testProjectText(), ch)
		if n == 0 {
			t.Errorf("Expected document %s to be included", ch)
		}
		if contribution > docCap+len(ch+".txt") {
			t.Errorf("Document %s contributed %d bytes, cap is %d", ch, contribution, docCap)
		}
	}
	if strings.Contains(got, "b.txt") {
		t.Error("Expected document that failed to fetch to be omitted")
	}
	if !strings.HasPrefix(got, "## Project\nName: Warehouse Refit\n") {
		t.Errorf("Expected project block first, got %q", got[:40])
	}
	if strings.Count(got, "[truncated]") != 3 {
		t.Errorf("Expected 3 truncation markers, got %d", strings.Count(got, "[truncated]"))
	}
}

func testProjectText() string {
	return New(memStore{}, 0, 0).Assemble(context.Background(), testProject(), nil)
}

func TestAssemble_ContextCap(t *testing.T) {
	objects := memStore{
		"k1": bytes.Repeat([]byte("x"), 600),
		"k2": bytes.Repeat([]byte("y"), 600),
		"k3": []byte("small"),
	}
	docs := []models.ProjectDocument{
		{ID: "1", Filename: "one.txt", ObjectKey: "k1"},
		{ID: "2", Filename: "two.txt", ObjectKey: "k2"},
		{ID: "3", Filename: "three.txt", ObjectKey: "k3"},
	}

	got := New(objects, 0, 1000).Assemble(context.Background(), testProject(), docs)

	if !strings.Contains(got, "one.txt") {
		t.Error("Expected first document within the cap")
	}
	if strings.Contains(got, "two.txt") {
		t.Error("Expected second document to be omitted by the context cap")
	}
	if !strings.Contains(got, "three.txt") {
		t.Error("Expected smaller later document to still fit")
	}
}

func TestAssemble_SkipsBinary(t *testing.T) {
	objects := memStore{
		"bin":  {0x89, 'P', 'N', 'G', 0x00, 0x01},
		"text": []byte("plain notes"),
	}
	docs := []models.ProjectDocument{
		{ID: "1", Filename: "photo.png", ObjectKey: "bin"},
		{ID: "2", Filename: "notes.txt", ObjectKey: "text"},
	}

	got := New(objects, 1024, 0).Assemble(context.Background(), testProject(), docs)

	if strings.Contains(got, "photo.png") {
		t.Error("Expected binary document to be skipped")
	}
	if !strings.Contains(got, "plain notes") {
		t.Error("Expected text document to be included")
	}
}

func TestAssemble_NoDocuments(t *testing.T) {
	got := testProjectText()
	if strings.Contains(got, "Project Documents") {
		t.Error("Expected no documents section without documents")
	}
	if !strings.Contains(got, "Requirements: Minimal downtime") {
		t.Errorf("Expected requirements in context, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		limit         int
		want          string
		wantTruncated bool
	}{
		{"under limit", "hello", 10, "hello", false},
		{"exact", "hello", 5, "hello", false},
		{"ascii cut", "hello world", 5, "hello", true},
		{"no cap", "hello", 0, "hello", false},
		{"rune boundary", "héllo", 2, "h", true},
		{"multibyte", "日本語", 4, "日", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := truncate([]byte(tt.in), tt.limit)
			if got != tt.want || truncated != tt.wantTruncated {
				t.Errorf("truncate(%q, %d) = %q, %v; want %q, %v", tt.in, tt.limit, got, truncated, tt.want, tt.wantTruncated)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	long := strings.Repeat("a", sniffLen-1) + "é" + "tail"

	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"text", []byte("hello"), false},
		{"nul", []byte("he\x00llo"), true},
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}, true},
		{"rune across sniff window", []byte(long), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		if got := isBinary(tt.in); got != tt.want {
			t.Errorf("isBinary(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
