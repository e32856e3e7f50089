package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "taskapp/internal/config"
	h "taskapp/internal/http/handlers"
	"taskapp/internal/http/middleware"
	"taskapp/internal/repositories"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Audit(repositories.APILogRepository{}, env.AuditLogBody),
		gin.Recovery(),
		middleware.CORS(env.CORSOrigins),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
		})
	})

	auth := middleware.Auth([]byte(env.JWTSecret), env.AuthRequired)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)

		tasks := api.Group("/tasks", auth)
		tasks.GET("", h.ListTasks)
		tasks.GET("/export", h.ExportTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.POST("", h.CreateTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)

		users := api.Group("/users", auth)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		logs := api.Group("/logs", auth)
		logs.GET("", h.ListAPILogs)
		logs.GET("/:id", h.GetAPILog)
	}

	return r
}
