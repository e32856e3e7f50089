package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskapp/internal/domain"
	"taskapp/internal/domain/models"
	"taskapp/internal/http/middleware"
	"taskapp/internal/query"
	"taskapp/internal/repositories"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	repo := repositories.UserRepository{}
	user, err := repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			Fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		RespondErr(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if user.Status != "active" {
		Fail(c, http.StatusForbidden, "Account is inactive")
		return
	}

	token, err := middleware.IssueToken(jwtSecret, user.ID, user.Role)
	if err != nil {
		RespondErr(c, err)
		return
	}

	OK(c, "Login successful", gin.H{
		"token": token,
		"user":  user.ToPublic(),
	})
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
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
	if req.Password != req.PasswordConfirmation {
		errs.Add("password_confirmation", "must match password")
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
		Role:         "user",
		Status:       "active",
	}
	if err := repo.Create(c.Request.Context(), &user); err != nil {
		RespondErr(c, err)
		return
	}

	pageCache.Invalidate(c.Request.Context(), "users")

	token, err := middleware.IssueToken(jwtSecret, user.ID, user.Role)
	if err != nil {
		RespondErr(c, err)
		return
	}

	Created(c, "Registration successful", gin.H{
		"token": token,
		"user":  user.ToPublic(),
	})
}
