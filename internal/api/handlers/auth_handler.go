package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/auth"
	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	cfg            *config.Config
	profileService services.IProfileService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, profileService services.IProfileService) *AuthHandler {
	return &AuthHandler{cfg: cfg, profileService: profileService}
}

type registerRequest struct {
	Email            string                 `json:"email" binding:"required,email"`
	Password         string                 `json:"password" binding:"required"`
	OrganizationName string                 `json:"organization_name" binding:"required"`
	OrganizationType *string                `json:"organization_type"`
	Location         *string                `json:"location"`
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	input := &services.ProfileInput{
		OrganizationName: req.OrganizationName,
		Location:         req.Location,
	}
	if req.OrganizationType != nil {
		t := orgType(*req.OrganizationType)
		if t == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization_type"})
			return
		}
		input.OrganizationType = t
	}

	profile, err := h.profileService.Register(c.Request.Context(), req.Email, req.Password, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		case errors.Is(err, services.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password does not meet the strength requirements"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "profile": profile})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	profile, err := h.profileService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Wrong email and wrong password look the same to the caller.
		if errors.Is(err, services.ErrProfileNotFound) || errors.Is(err, services.ErrWrongPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "profile": profile})
}
