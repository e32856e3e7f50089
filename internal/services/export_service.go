package services

import (
	"bytes"
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"

	"taskapp/internal/domain/models"
	"taskapp/internal/query"
	"taskapp/internal/repositories"
	"taskapp/internal/utils"
)

// ExportRowLimit caps how many tasks one PDF export may contain.
const ExportRowLimit = 500

// ExportService renders filtered task lists to PDF.
type ExportService struct {
	Tasks repositories.TaskRepository
}

func (s ExportService) TaskListPDF(ctx context.Context, q *query.Query) ([]byte, error) {
	page, err := s.Tasks.List(ctx, q)
	if err != nil {
		return nil, err
	}
	tasks, _ := page.Data.([]models.Task)
	return buildTaskListPDF(tasks, page.Pagination.Total)
}

func buildTaskListPDF(tasks []models.Task, total int) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Tasks", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Task List")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Exported %s, %d of %d task(s)", utils.NowUTC().Format("2006-01-02 15:04"), len(tasks), total))
	pdf.Ln(10)

	widths := []float64{14, 90, 26, 22, 28, 28, 28}
	headers := []string{"ID", "Title", "Status", "Priority", "Due", "Completed", "Created"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, head := range headers {
		pdf.CellFormat(widths[i], 7, head, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, t := range tasks {
		cells := []string{
			fmt.Sprintf("%d", t.ID),
			truncate(t.Title, 60),
			t.Status,
			t.Priority,
			dateOrDash(t.DueDate),
			dateOrDash(t.CompletedAt),
			t.CreatedAt.Format("2006-01-02"),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
