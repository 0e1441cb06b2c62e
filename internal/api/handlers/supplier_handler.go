package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// SupplierHandler handles the supplier catalog endpoints.
type SupplierHandler struct {
	supplierService services.ISupplierService
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(supplierService services.ISupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create handles POST /v1/suppliers.
func (h *SupplierHandler) Create(c *gin.Context) {
	var input services.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), currentUserID(c), &input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "supplier": supplier})
}

// List handles GET /v1/suppliers.
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.supplierService.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list suppliers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "suppliers": suppliers})
}

// Get handles GET /v1/suppliers/:id.
func (h *SupplierHandler) Get(c *gin.Context) {
	supplier, err := h.supplierService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve supplier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "supplier": supplier})
}

// Update handles PUT /v1/suppliers/:id.
func (h *SupplierHandler) Update(c *gin.Context) {
	var input services.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), c.Param("id"), currentUserID(c), &input)
	if err != nil {
		if errors.Is(err, services.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "supplier": supplier})
}

// Delete handles DELETE /v1/suppliers/:id.
func (h *SupplierHandler) Delete(c *gin.Context) {
	err := h.supplierService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete supplier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
