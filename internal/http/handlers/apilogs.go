package handlers

import (
	"github.com/gin-gonic/gin"

	"taskapp/internal/cache"
	"taskapp/internal/query"
	"taskapp/internal/repositories"
)

var apiLogSpec = repositories.APILogSpec()

// GET /api/logs is read-only; the audit middleware is the only writer, so
// list entries may lag by at most the cache TTL.
func ListAPILogs(c *gin.Context) {
	q, verrs := query.Build(apiLogSpec, c.Request.URL.Query())
	if verrs != nil {
		FailValidation(c, verrs)
		return
	}

	repo := repositories.APILogRepository{}
	payload, err := pageCache.GetOrCompute(c.Request.Context(), "logs", cache.Fingerprint(c.Request.URL.Query()), cacheTTL, func() (any, error) {
		return repo.List(c.Request.Context(), q)
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "Logs retrieved successfully", payload)
}

// GET /api/logs/:id
func GetAPILog(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	repo := repositories.APILogRepository{}
	payload, err := pageCache.GetOrComputeItem(c.Request.Context(), "logs", id, cacheTTL, func() (any, error) {
		return repo.GetByID(c.Request.Context(), id)
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "Log retrieved successfully", payload)
}
