package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/config"
)

// GET /api/health
func Health(c *gin.Context) {
	OK(c, "Service is healthy", gin.H{"status": "ok"})
}

// GET /api/db-check
func DBCheck(c *gin.Context) {
	if err := config.EnsureDB(); err != nil {
		Fail(c, http.StatusInternalServerError, "Database unavailable")
		return
	}
	OK(c, "Database connection OK", nil)
}
