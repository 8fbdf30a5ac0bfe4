package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "aisle/internal/errors"
	"aisle/internal/pagination"
	"aisle/internal/services"
)

// VendorHandler handles vendor requests.
type VendorHandler struct {
	vendorService services.VendorServicer
	auditService  services.AuditServicer
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(vendorService services.VendorServicer, auditService services.AuditServicer) *VendorHandler {
	return &VendorHandler{vendorService: vendorService, auditService: auditService}
}

// CreateVendorRequest represents the request payload for creating a vendor.
type CreateVendorRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	Phone       string `json:"phone" binding:"max=50"`
	Website     string `json:"website" binding:"omitempty,url,max=255"`
	Notes       string `json:"notes" binding:"max=2000"`
}

// UpdateVendorRequest represents the request payload for updating a vendor.
type UpdateVendorRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email,max=255"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Website     *string `json:"website" binding:"omitempty,url,max=255"`
	Notes       *string `json:"notes" binding:"omitempty,max=2000"`
}

// CreateVendor handles the creation of a new vendor.
// @Summary     Create a vendor
// @Description Create a new wedding supplier
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateVendorRequest true "Vendor details"
// @Success     201 {object} models.Vendor "Vendor created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	vendor, err := h.vendorService.CreateVendor(userID, req.Name, req.ContactName, req.Email, req.Phone, req.Website, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_VENDOR", "vendor", vendor.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"vendor": vendor})
}

// GetVendors handles listing vendors for the authenticated user.
// @Summary     Get vendors
// @Description Get a paginated list of the user's vendors
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Vendor] "Paginated vendors"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /vendors [get]
func (h *VendorHandler) GetVendors(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.vendorService.GetUserVendors(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetVendor handles the retrieval of a single vendor.
// @Summary     Get vendor by ID
// @Description Get one vendor by ID
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Vendor ID"
// @Success     200 {object} models.Vendor "Vendor details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	vendorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	vendor, err := h.vendorService.GetVendorByID(userID, vendorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// UpdateVendor handles vendor updates.
// @Summary     Update a vendor
// @Description Update a vendor's fields
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Vendor ID"
// @Param       request body UpdateVendorRequest true "Fields to update"
// @Success     200 {object} models.Vendor "Vendor updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id} [put]
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	vendorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	vendor, err := h.vendorService.UpdateVendor(userID, vendorID, req.Name, req.ContactName, req.Email, req.Phone, req.Website, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_VENDOR", "vendor", vendorID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// DeleteVendor handles vendor deletion.
// @Summary     Delete a vendor
// @Description Delete a vendor, detaching it from nodes and payments
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Vendor ID"
// @Success     200 {object} MessageResponse "Vendor deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id} [delete]
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	vendorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.vendorService.DeleteVendor(userID, vendorID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_VENDOR", "vendor", vendorID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}
