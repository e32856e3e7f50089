package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskapp/internal/cache"
	"taskapp/internal/domain/models"
	"taskapp/internal/query"
	"taskapp/internal/repositories"
)

var userSpec = repositories.UserSpec()

func validUserRole(role string) bool {
	switch role {
	case "admin", "manager", "user":
		return true
	}
	return false
}

func validUserStatus(status string) bool {
	return status == "active" || status == "inactive"
}

// GET /api/users
func ListUsers(c *gin.Context) {
	q, verrs := query.Build(userSpec, c.Request.URL.Query())
	if verrs != nil {
		FailValidation(c, verrs)
		return
	}

	repo := repositories.UserRepository{}
	payload, err := pageCache.GetOrCompute(c.Request.Context(), "users", cache.Fingerprint(c.Request.URL.Query()), cacheTTL, func() (any, error) {
		return repo.List(c.Request.Context(), q)
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "Users retrieved successfully", payload)
}

// GET /api/users/:id
func GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	repo := repositories.UserRepository{}
	payload, err := pageCache.GetOrComputeItem(c.Request.Context(), "users", id, cacheTTL, func() (any, error) {
		u, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			return nil, err
		}
		return u.ToPublic(), nil
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	OK(c, "User retrieved successfully", payload)
}

type userCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// POST /api/users
func CreateUser(c *gin.Context) {
	var req userCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Role == "" {
		req.Role = "user"
	}
	if req.Status == "" {
		req.Status = "active"
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	errs := query.ValidationErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		errs.Add("email", "must be a valid email address")
	}
	if len(req.Password) < 8 {
		errs.Add("password", "must be at least 8 characters")
	}
	if !validUserRole(req.Role) {
		errs.Add("role", "must be one of admin, manager, user")
	}
	if !validUserStatus(req.Status) {
		errs.Add("status", "must be active or inactive")
	}
	if len(errs) > 0 {
		FailValidation(c, errs)
		return
	}

	repo := repositories.UserRepository{}
	exists, err := repo.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		RespondErr(c, err)
		return
	}
	if exists {
		errs.Add("email", "is already taken")
		FailValidation(c, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondErr(c, err)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       req.Status,
	}
	if err := repo.Create(c.Request.Context(), &user); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "users")
	Created(c, "User created successfully", user.ToPublic())
}

type userUpdateRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// PUT/PATCH /api/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	repo := repositories.UserRepository{}
	user, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondErr(c, err)
		return
	}

	errs := query.ValidationErrors{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs.Add("name", "must not be empty")
		} else {
			user.Name = strings.TrimSpace(*req.Name)
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			errs.Add("email", "must be a valid email address")
		} else {
			user.Email = email
		}
	}
	if req.Role != nil {
		if !validUserRole(*req.Role) {
			errs.Add("role", "must be one of admin, manager, user")
		} else {
			user.Role = *req.Role
		}
	}
	if req.Status != nil {
		if !validUserStatus(*req.Status) {
			errs.Add("status", "must be active or inactive")
		} else {
			user.Status = *req.Status
		}
	}
	if len(errs) > 0 {
		FailValidation(c, errs)
		return
	}

	if err := repo.Update(c.Request.Context(), &user); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "users")
	pageCache.InvalidateItem(c.Request.Context(), "users", id)
	OK(c, "User updated successfully", user.ToPublic())
}

// DELETE /api/users/:id
func DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	repo := repositories.UserRepository{}
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "users")
	pageCache.InvalidateItem(c.Request.Context(), "users", id)
	OK(c, "User deleted successfully", nil)
}
