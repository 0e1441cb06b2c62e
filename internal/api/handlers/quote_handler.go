package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/ai"
	"github.com/AndreiCalugar/FertiHub/internal/metrics"
	"github.com/AndreiCalugar/FertiHub/internal/services"
	"github.com/AndreiCalugar/FertiHub/internal/storage"
)

// QuoteHandler handles quote recording, AI extraction and upload URLs.
type QuoteHandler struct {
	quoteService      services.IQuoteService
	engagementService services.IEngagementService
	quoteParser       ai.IQuoteParser // nil when OPENAI_API_KEY is absent
	storageService    storage.IS3Storage
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService services.IQuoteService, engagementService services.IEngagementService,
	quoteParser ai.IQuoteParser, storageService storage.IS3Storage) *QuoteHandler {
	return &QuoteHandler{
		quoteService:      quoteService,
		engagementService: engagementService,
		quoteParser:       quoteParser,
		storageService:    storageService,
	}
}

// Create handles POST /v1/quotes: records the quote, then re-evaluates the
// inquiry's completion so the status and one-shot notification move in the
// same request.
func (h *QuoteHandler) Create(c *gin.Context) {
	var input services.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	userID := currentUserID(c)
	quote, err := h.quoteService.Create(c.Request.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		return
	}

	completion, err := h.engagementService.CheckCompletion(c.Request.Context(), input.InquiryID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quote saved but completion check failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "quote": quote, "completion": completion})
}

// ListByInquiry handles GET /v1/quotes?inquiry_id=...
func (h *QuoteHandler) ListByInquiry(c *gin.Context) {
	inquiryID := c.Query("inquiry_id")
	if inquiryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inquiry_id query parameter required"})
		return
	}

	quotes, err := h.quoteService.ListByInquiry(c.Request.Context(), inquiryID, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quotes": quotes})
}

// Delete handles DELETE /v1/quotes/:id.
func (h *QuoteHandler) Delete(c *gin.Context) {
	err := h.quoteService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type checkCompletionRequest struct {
	InquiryID string `json:"inquiryId" binding:"required"`
}

// CheckCompletion handles POST /v1/quotes/check-completion.
func (h *QuoteHandler) CheckCompletion(c *gin.Context) {
	var req checkCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.engagementService.CheckCompletion(c.Request.Context(), req.InquiryID, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check completion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"allQuotesReceived": result.AllQuotesReceived,
		"totalSuppliers":    result.TotalSuppliers,
		"quotesReceived":    result.QuotesReceived,
	})
}

type parseAIRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseAI handles POST /v1/quotes/parse-ai. A single LLM round trip that
// extracts structured quote fields from pasted text.
func (h *QuoteHandler) ParseAI(c *gin.Context) {
	if h.quoteParser == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI quote parsing is not configured"})
		return
	}

	var req parseAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	parsed, err := h.quoteParser.ParseQuoteFromText(c.Request.Context(), req.Text)
	if err != nil {
		metrics.QuoteParseTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to parse quote: " + err.Error()})
		return
	}
	metrics.QuoteParseTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "parsed": parsed})
}

type uploadURLRequest struct {
	InquiryID   string `json:"inquiry_id" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Purpose     string `json:"purpose"` // "quote" (default) or "attachment"
}

// UploadURL handles POST /v1/quotes/upload-url, returning a presigned S3 PUT
// URL for quote PDFs or inquiry attachments.
func (h *QuoteHandler) UploadURL(c *gin.Context) {
	if h.storageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	userID := currentUserID(c)
	var url, key string
	var err error
	if req.Purpose == "attachment" {
		url, key, err = h.storageService.GenerateAttachmentUploadURL(c.Request.Context(), userID, req.InquiryID, req.Filename, req.ContentType)
	} else {
		url, key, err = h.storageService.GenerateQuoteUploadURL(c.Request.Context(), userID, req.InquiryID, req.Filename, req.ContentType)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "upload_url": url, "object_key": key})
}
