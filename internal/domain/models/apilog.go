package models

import "time"

// APILog is one append-only row per handled HTTP request. UserID is kept
// without a foreign-key requirement so records survive user deletion.
type APILog struct {
	ID         int64     `json:"id"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"`
	DurationMs int64     `json:"duration_ms"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	UserID     *int64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
