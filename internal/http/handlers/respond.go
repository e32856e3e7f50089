package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskapp/internal/cache"
	"taskapp/internal/domain"
	"taskapp/internal/http/middleware"
	"taskapp/internal/query"
	"taskapp/internal/utils"
)

// Shared handler state, overridden from main once config is loaded.
var (
	pageCache = cache.New(cache.NewMemoryStore())
	cacheTTL  = 60 * time.Second
	jwtSecret = []byte("super-secret-key-change-me")
)

// Configure wires the cache backend, TTL and signing secret.
func Configure(c *cache.Cache, ttl time.Duration, secret string) {
	if c != nil {
		pageCache = c
	}
	if ttl > 0 {
		cacheTTL = ttl
	}
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

func respond(c *gin.Context, status int, payload gin.H) {
	payload["timestamp"] = utils.NowUTC().Format(time.RFC3339)
	c.JSON(status, payload)
}

// OK sends the uniform success envelope. data may be nil (e.g. deletes).
func OK(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func Created(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

// Fail sends the error envelope without field errors.
func Fail(c *gin.Context, status int, message string) {
	respond(c, status, gin.H{"success": false, "message": message})
}

// FailValidation sends 422 with every accumulated field error.
func FailValidation(c *gin.Context, errs query.ValidationErrors) {
	respond(c, http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// RespondErr maps the domain error taxonomy onto status codes. Internal
// detail goes to the server log only.
func RespondErr(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		Fail(c, http.StatusNotFound, err.Error())
	case domain.IsConflict(err):
		Fail(c, http.StatusUnprocessableEntity, err.Error())
	case domain.IsAuth(err):
		var authErr domain.AuthError
		status := http.StatusUnauthorized
		if errors.As(err, &authErr) && authErr.Forbidden {
			status = http.StatusForbidden
		}
		Fail(c, status, err.Error())
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// paramID parses the :id path segment; invalid ids surface as a field
// error so clients get the same envelope everywhere.
func paramID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := parseID(raw)
	if err != nil {
		errs := query.ValidationErrors{}
		errs.Add("id", "must be a positive integer")
		FailValidation(c, errs)
		return 0, false
	}
	return id, true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
