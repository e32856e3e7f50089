package services

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"taskapp/internal/domain/models"
)

func TestBuildTaskListPDF(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, Title: "Write report", Status: models.TaskStatusPending, Priority: models.TaskPriorityHigh, DueDate: &due, CreatedAt: now},
		{ID: 2, Title: "Review PR", Status: models.TaskStatusCompleted, Priority: models.TaskPriorityLow, CompletedAt: &now, CreatedAt: now},
	}

	pdf, err := buildTaskListPDF(tasks, 2)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("not a PDF, starts with %q", pdf[:min(8, len(pdf))])
	}
}

func TestBuildTaskListPDFEmpty(t *testing.T) {
	pdf, err := buildTaskListPDF(nil, 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("empty list must still render a document")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Fatalf("truncate: %q", got)
	}
	long := "This title keeps going well past the width of a table cell in the export"
	got := truncate(long, 20)
	if len(got) != 20 {
		t.Fatalf("len: %d", len(got))
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("suffix: %q", got)
	}
}

// Cutting a multibyte title must never split a rune.
func TestTruncateMultibyte(t *testing.T) {
	long := strings.Repeat("ü", 30)
	got := truncate(long, 20)
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("ü", 17)+"..." {
		t.Fatalf("truncate: %q", got)
	}
}

func TestDateOrDash(t *testing.T) {
	if got := dateOrDash(nil); got != "-" {
		t.Fatalf("nil: %q", got)
	}
	d := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	if got := dateOrDash(&d); got != "2024-05-10" {
		t.Fatalf("date: %q", got)
	}
}
