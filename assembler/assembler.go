// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package assembler builds the bounded textual context given to the model
// from a project record and its uploaded documents.
package assembler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/sowgen/models"
	"github.com/danielhkuo/sowgen/objectstore"
)

// sniffLen is how much of a document is inspected for binary content.
const sniffLen = 512

// Assembler turns project data into prompt context.
type Assembler struct {
	objects    objectstore.Getter
	docCap     int
	contextCap int
}

// New creates an Assembler. docCap bounds each document and contextCap bounds
// the documents section as a whole; zero disables a cap.
func New(objects objectstore.Getter, docCap, contextCap int) *Assembler {
	return &Assembler{objects: objects, docCap: docCap, contextCap: contextCap}
}

// Assemble renders the project block followed by each readable document in
// the order given. Documents that cannot be fetched, are binary, or would
// overflow the context cap are left out.
func (a *Assembler) Assemble(ctx context.Context, project *models.Project, docs []models.ProjectDocument) string {
	var b strings.Builder

	b.WriteString("## Project\n")
	fmt.Fprintf(&b, "Name: %s\n", project.Name)
	if project.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", project.Description)
	}
	if project.Requirements != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", project.Requirements)
	}

	used := 0
	wroteHeader := false
	for _, doc := range docs {
		content, err := a.objects.Get(ctx, doc.ObjectKey)
		if err != nil {
			slog.Warn("skipping project document", "project_id", project.ID, "document_id", doc.ID, "error", err)
			continue
		}
		if isBinary(content) {
			slog.Info("skipping binary project document", "project_id", project.ID, "document_id", doc.ID, "filename", doc.Filename)
			continue
		}

		text, truncated := truncate(content, a.docCap)
		block := formatDocument(doc.Filename, text, truncated)
		if a.contextCap > 0 && used+len(block) > a.contextCap {
			slog.Info("context cap reached, omitting document", "project_id", project.ID, "document_id", doc.ID, "cap", a.contextCap)
			continue
		}

		if !wroteHeader {
			b.WriteString("\n## Project Documents\n")
			wroteHeader = true
		}
		b.WriteString(block)
		used += len(block)
	}

	return b.String()
}

func formatDocument(filename, text string, truncated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n### %s\n", filename)
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	if truncated {
		b.WriteString("[truncated]\n")
	}
	return b.String()
}

// isBinary reports whether content looks like something other than UTF-8 text.
func isBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
		// Drop a rune cut in half by the sniff window.
		for i := len(head) - 1; i >= 0 && i >= len(head)-utf8.UTFMax; i-- {
			if utf8.RuneStart(head[i]) {
				if !utf8.FullRune(head[i:]) {
					head = head[:i]
				}
				break
			}
		}
	}
	return bytes.IndexByte(head, 0) != -1 || !utf8.Valid(head)
}

// truncate keeps at most limit bytes from the start of content without
// splitting a rune.
func truncate(content []byte, limit int) (string, bool) {
	if limit <= 0 || len(content) <= limit {
		return string(content), false
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return string(content[:cut]), true
}
