package query

import (
	"testing"
	"time"
)

func stubClock(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })
}

func TestOverdueFlagTrue(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stubClock(t, fixed)

	q, errs := Build(testTaskSpec(), params("is_overdue", "true"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, args, _ := q.Select.ToSql()
	want := "SELECT id, title, status FROM tasks WHERE (due_date < ? AND completed_at IS NULL) ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
	if len(args) != 1 || !args[0].(time.Time).Equal(fixed) {
		t.Fatalf("args: %v", args)
	}
}

// A task with no due date counts as not overdue.
func TestOverdueFlagFalse(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stubClock(t, fixed)

	q, errs := Build(testTaskSpec(), params("is_overdue", "false"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, args, _ := q.Select.ToSql()
	want := "SELECT id, title, status FROM tasks WHERE (due_date IS NULL OR due_date >= ? OR completed_at IS NOT NULL) ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
	if len(args) != 1 {
		t.Fatalf("args: %v", args)
	}
}

func TestCompletedFlag(t *testing.T) {
	q, errs := Build(testTaskSpec(), params("is_completed", "true"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, args, _ := q.Select.ToSql()
	want := "SELECT id, title, status FROM tasks WHERE completed_at IS NOT NULL ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
	if len(args) != 0 {
		t.Fatalf("args: %v", args)
	}

	q, errs = Build(testTaskSpec(), params("is_completed", "0"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, _, _ = q.Select.ToSql()
	want = "SELECT id, title, status FROM tasks WHERE completed_at IS NULL ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
}

// Custom filters also bind the count query so total matches the page.
func TestCustomFilterBindsCount(t *testing.T) {
	q, errs := Build(testTaskSpec(), params("is_completed", "true"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	countSQL, _, _ := q.Count.ToSql()
	if countSQL != "SELECT COUNT(*) FROM tasks WHERE completed_at IS NOT NULL" {
		t.Fatalf("count sql: %s", countSQL)
	}
}

func TestNumericRangeBounds(t *testing.T) {
	q, errs := Build(testLogSpec(), params("min_duration", "100", "max_duration", "500"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, args, _ := q.Select.ToSql()
	want := "SELECT id, endpoint, status_code, duration_ms FROM api_logs WHERE duration_ms >= ? AND duration_ms <= ? ORDER BY created_at DESC, id DESC LIMIT 15 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
	if len(args) != 2 || args[0] != int64(100) || args[1] != int64(500) {
		t.Fatalf("args: %v", args)
	}
}

func TestNumericRangeLowerOnly(t *testing.T) {
	q, errs := Build(testLogSpec(), params("min_duration", "250"))
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	sqlStr, args, _ := q.Select.ToSql()
	want := "SELECT id, endpoint, status_code, duration_ms FROM api_logs WHERE duration_ms >= ? ORDER BY created_at DESC, id DESC LIMIT 15 OFFSET 0"
	if sqlStr != want {
		t.Fatalf("select sql\n got: %s\nwant: %s", sqlStr, want)
	}
	if len(args) != 1 || args[0] != int64(250) {
		t.Fatalf("args: %v", args)
	}
}

// Inverted bounds report on the upper-bound parameter.
func TestNumericRangeOrdering(t *testing.T) {
	_, errs := Build(testLogSpec(), params("min_duration", "500", "max_duration", "100"))
	if errs == nil || len(errs["max_duration"]) == 0 {
		t.Fatalf("expected error on max_duration, got %v", errs)
	}
}

func TestNumericRangeRejectsGarbage(t *testing.T) {
	_, errs := Build(testLogSpec(), params("min_duration", "fast"))
	if errs == nil || len(errs["min_duration"]) == 0 {
		t.Fatalf("expected error on min_duration, got %v", errs)
	}
}
