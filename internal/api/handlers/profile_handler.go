package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/api/middleware"
	"github.com/AndreiCalugar/FertiHub/internal/models"
	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// ProfileHandler handles the organization profile endpoints.
type ProfileHandler struct {
	profileService services.IProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService services.IProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// currentUserID pulls the authenticated user ID set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextKeyUserID)
}

func orgType(s string) *models.OrganizationType {
	switch models.OrganizationType(s) {
	case models.OrgTypeLab, models.OrgTypeClinic, models.OrgTypeHospital:
		t := models.OrganizationType(s)
		return &t
	}
	return nil
}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

type updateProfileRequest struct {
	OrganizationName string  `json:"organization_name" binding:"required"`
	OrganizationType *string `json:"organization_type"`
	Location         *string `json:"location"`
}

// Update handles PUT /v1/profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
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

	profile, err := h.profileService.Update(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /v1/profile/password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	err := h.profileService.ChangePassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		case errors.Is(err, services.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password does not meet the strength requirements"})
		case errors.Is(err, services.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
