package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// InquiryHandler handles inquiry CRUD and the RFQ send endpoint.
type InquiryHandler struct {
	inquiryService    services.IInquiryService
	quoteService      services.IQuoteService
	engagementService services.IEngagementService
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(inquiryService services.IInquiryService, quoteService services.IQuoteService,
	engagementService services.IEngagementService) *InquiryHandler {
	return &InquiryHandler{
		inquiryService:    inquiryService,
		quoteService:      quoteService,
		engagementService: engagementService,
	}
}

// Create handles POST /v1/inquiries.
func (h *InquiryHandler) Create(c *gin.Context) {
	var input services.InquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), currentUserID(c), &input)
	if err != nil {
		if errors.Is(err, services.ErrNoSuppliers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one valid supplier is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "inquiry": inquiry})
}

// List handles GET /v1/inquiries.
func (h *InquiryHandler) List(c *gin.Context) {
	inquiries, err := h.inquiryService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inquiries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inquiries": inquiries})
}

// Get handles GET /v1/inquiries/:id, returning the inquiry with its contacts
// and quotes.
func (h *InquiryHandler) Get(c *gin.Context) {
	inquiryID := c.Param("id")
	userID := currentUserID(c)

	detail, err := h.inquiryService.GetDetail(c.Request.Context(), inquiryID, userID)
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inquiry"})
		return
	}

	quotes, err := h.quoteService.ListForInquiry(c.Request.Context(), inquiryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quotes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"inquiry":  detail.Inquiry,
		"contacts": detail.Contacts,
		"quotes":   quotes,
	})
}

// Delete handles DELETE /v1/inquiries/:id.
func (h *InquiryHandler) Delete(c *gin.Context) {
	err := h.inquiryService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inquiry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Send handles POST /v1/inquiries/:id/send. Dispatches the RFQ email to
// every contact that has not received one. Per-contact failures come back in
// the errors array with an overall 200.
func (h *InquiryHandler) Send(c *gin.Context) {
	result, err := h.engagementService.SendInquiryEmails(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send inquiry emails"})
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
