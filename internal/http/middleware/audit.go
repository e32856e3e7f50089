package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"taskapp/internal/domain/models"
	"taskapp/internal/repositories"
	"taskapp/internal/utils"
)

const redactedPlaceholder = "[REDACTED]"

// sensitiveFields are replaced before any request body reaches a log.
var sensitiveFields = map[string]bool{
	"password":              true,
	"password_confirmation": true,
	"current_password":      true,
	"token":                 true,
	"access_token":          true,
	"refresh_token":         true,
}

// Audit records one api_logs row per request: method, endpoint, status,
// duration and caller. Persistence failure never fails the request; it
// degrades to the local event log.
func Audit(repo repositories.APILogRepository, logBody bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Monotonic start for the duration; UTC only for the stored stamp.
		start := time.Now()

		if logBody {
			logRedactedBody(c)
		}

		c.Next()

		rec := models.APILog{
			Method:     c.Request.Method,
			Endpoint:   c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			UserID:     AuthUserID(c),
			CreatedAt:  start.UTC(),
		}

		// Detached context: the audit write must not be cancelled by the
		// client hanging up after the response.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := repo.Insert(ctx, rec); err != nil {
			utils.LogEvent(GetRequestID(c), "audit", "insert_failed", err.Error())
		}
	}
}

func logRedactedBody(c *gin.Context) {
	switch c.Request.Method {
	case "POST", "PUT", "PATCH":
	default:
		return
	}
	if c.Request.Body == nil {
		return
	}

	// Capture at most 64KB for the log; the handler still sees the full
	// body via the unread remainder.
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		return
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), c.Request.Body))

	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	utils.LogEvent(GetRequestID(c), "audit", "request_body", string(RedactBody(raw)))
}

// RedactBody replaces sensitive JSON field values with a fixed
// placeholder, recursing into nested objects and arrays. Non-JSON bodies
// are withheld entirely.
func RedactBody(raw []byte) []byte {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []byte(redactedPlaceholder)
	}
	redacted, err := json.Marshal(redactValue(decoded))
	if err != nil {
		return []byte(redactedPlaceholder)
	}
	return redacted
}

func redactValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for k, nested := range value {
			if sensitiveFields[k] {
				value[k] = redactedPlaceholder
				continue
			}
			value[k] = redactValue(nested)
		}
		return value
	case []any:
		for i, nested := range value {
			value[i] = redactValue(nested)
		}
		return value
	default:
		return v
	}
}
