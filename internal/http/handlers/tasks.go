package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/cache"
	"taskapp/internal/domain/models"
	"taskapp/internal/query"
	"taskapp/internal/repositories"
	"taskapp/internal/services"
	"taskapp/internal/utils"
)

var taskSpec = repositories.TaskSpec()

// GET /api/tasks
func ListTasks(c *gin.Context) {
	q, verrs := query.Build(taskSpec, c.Request.URL.Query())
	if verrs != nil {
		FailValidation(c, verrs)
		return
	}

	repo := repositories.TaskRepository{}
	payload, err := pageCache.GetOrCompute(c.Request.Context(), "tasks", cache.Fingerprint(c.Request.URL.Query()), cacheTTL, func() (any, error) {
		return repo.List(c.Request.Context(), q)
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "Tasks retrieved successfully", payload)
}

// GET /api/tasks/:id
func GetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	repo := repositories.TaskRepository{}
	payload, err := pageCache.GetOrComputeItem(c.Request.Context(), "tasks", id, cacheTTL, func() (any, error) {
		return repo.GetByID(c.Request.Context(), id)
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "Task retrieved successfully", payload)
}

type taskCreateRequest struct {
	UserID      int64   `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// POST /api/tasks
func CreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Status == "" {
		req.Status = models.TaskStatusPending
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}

	errs := query.ValidationErrors{}
	if req.Title == "" {
		errs.Add("title", "is required")
	}
	if req.UserID < 1 {
		errs.Add("user_id", "is required")
	}
	if !models.ValidTaskStatus(req.Status) {
		errs.Add("status", "must be one of pending, in_progress, completed")
	}
	if !models.ValidTaskPriority(req.Priority) {
		errs.Add("priority", "must be one of low, medium, high")
	}
	task := models.Task{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := utils.ParseDate(*req.DueDate)
		if err != nil {
			errs.Add("due_date", "must be a date in YYYY-MM-DD format")
		} else {
			task.DueDate = &due
		}
	}
	if len(errs) > 0 {
		FailValidation(c, errs)
		return
	}

	repo := repositories.TaskRepository{}
	if err := repo.Create(c.Request.Context(), &task); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "tasks")
	Created(c, "Task created successfully", task)
}

type taskUpdateRequest struct {
	UserID      *int64  `json:"user_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// PUT/PATCH /api/tasks/:id. Absent keys keep their stored values.
func UpdateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	repo := repositories.TaskRepository{}
	task, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondErr(c, err)
		return
	}

	errs := query.ValidationErrors{}
	if req.UserID != nil {
		if *req.UserID < 1 {
			errs.Add("user_id", "must be a positive integer")
		} else {
			task.UserID = *req.UserID
		}
	}
	if req.Title != nil {
		if *req.Title == "" {
			errs.Add("title", "must not be empty")
		} else {
			task.Title = *req.Title
		}
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			errs.Add("status", "must be one of pending, in_progress, completed")
		} else {
			task.Status = *req.Status
		}
	}
	if req.Priority != nil {
		if !models.ValidTaskPriority(*req.Priority) {
			errs.Add("priority", "must be one of low, medium, high")
		} else {
			task.Priority = *req.Priority
		}
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else if due, err := utils.ParseDate(*req.DueDate); err != nil {
			errs.Add("due_date", "must be a date in YYYY-MM-DD format")
		} else {
			task.DueDate = &due
		}
	}
	if len(errs) > 0 {
		FailValidation(c, errs)
		return
	}

	if err := repo.Update(c.Request.Context(), &task); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "tasks")
	pageCache.InvalidateItem(c.Request.Context(), "tasks", id)
	OK(c, "Task updated successfully", task)
}

// DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	repo := repositories.TaskRepository{}
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "tasks")
	pageCache.InvalidateItem(c.Request.Context(), "tasks", id)
	OK(c, "Task deleted successfully", nil)
}

// GET /api/tasks/export: PDF of the filtered list, same engine as /tasks
// but with a wider page bound.
func ExportTasks(c *gin.Context) {
	spec := *taskSpec
	spec.DefaultPerPage = services.ExportRowLimit
	spec.MaxPerPage = services.ExportRowLimit

	q, verrs := query.Build(&spec, c.Request.URL.Query())
	if verrs != nil {
		FailValidation(c, verrs)
		return
	}

	svc := services.ExportService{Tasks: repositories.TaskRepository{}}
	pdf, err := svc.TaskListPDF(c.Request.Context(), q)
	if err != nil {
		RespondErr(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tasks.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
