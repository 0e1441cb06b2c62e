package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// EngagementHandler exposes the dispatcher: the cron entrypoints and the
// manual follow-up endpoint.
type EngagementHandler struct {
	engagementService services.IEngagementService
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(engagementService services.IEngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// AutoFollowUp handles POST|GET /v1/cron/auto-follow-up (cron secret).
// Per-contact failures are reported in details; only a pass-level failure
// returns a non-200.
func (h *EngagementHandler) AutoFollowUp(c *gin.Context) {
	result, err := h.engagementService.RunFollowUpPass(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Follow-up pass failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Sent %d follow-up emails", result.FollowedUp),
		"followed_up": result.FollowedUp,
		"details":     result.Details,
	})
}

// DeadlineReminders handles GET /v1/cron/deadline-reminders (cron secret).
func (h *EngagementHandler) DeadlineReminders(c *gin.Context) {
	result, err := h.engagementService.RunDeadlineReminderPass(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Deadline reminder pass failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"remindersCount": result.RemindersCount,
		"reminders":      result.Reminders,
	})
}

type manualFollowUpRequest struct {
	InquiryID   string   `json:"inquiryId" binding:"required"`
	SupplierIDs []string `json:"supplierIds"`
}

// ManualFollowUp handles POST /v1/email/follow-up: owner-triggered
// follow-ups for one inquiry, optionally limited to chosen suppliers.
func (h *EngagementHandler) ManualFollowUp(c *gin.Context) {
	var req manualFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.engagementService.FollowUpInquiry(c.Request.Context(), req.InquiryID, currentUserID(c), req.SupplierIDs)
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send follow-ups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sent":    len(result.Sent),
		"failed":  len(result.Failed),
		"results": result.Sent,
		"errors":  result.Failed,
	})
}
