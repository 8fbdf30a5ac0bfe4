package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "aisle/internal/errors"
	"aisle/internal/models"
	"aisle/internal/pagination"
	"aisle/internal/services"
)

// PaymentHandler handles payment ledger requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
	auditService   services.AuditServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer, auditService services.AuditServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auditService: auditService}
}

// CreatePaymentRequest represents the request payload for creating a payment.
type CreatePaymentRequest struct {
	NodeID   string             `json:"node_id" binding:"required,uuid"`
	Kind     models.PaymentKind `json:"kind" binding:"required,payment_kind"`
	Amount   decimal.Decimal    `json:"amount" binding:"required"`
	DueDate  *time.Time         `json:"due_date"`
	VendorID *string            `json:"vendor_id"`
	Notes    string             `json:"notes" binding:"max=2000"`
}

// MarkPaidRequest represents the request payload for settling a payment.
// PaidAt defaults to now when omitted.
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// CreatePayment handles the creation of a ledger entry.
// @Summary     Create a payment
// @Description Record a payment, refund, or credit against a budget item
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePaymentRequest true "Payment details"
// @Success     201 {object} models.Payment "Payment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payment, err := h.paymentService.CreatePayment(userID, req.NodeID, req.Kind, req.Amount, req.DueDate, req.VendorID, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PAYMENT", "payment", payment.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "amount": req.Amount.String(), "node_id": req.NodeID})

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetScenarioPayments handles listing a scenario's ledger.
// @Summary     Get scenario payments
// @Description Get a paginated list of one scenario's ledger entries
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Scenario ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /scenarios/{id}/payments [get]
func (h *PaymentHandler) GetScenarioPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scenarioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.paymentService.GetScenarioPayments(userID, scenarioID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetNodePayments handles listing a node's ledger entries.
// @Summary     Get node payments
// @Description Get a paginated list of one node's ledger entries
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Node ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /nodes/{id}/payments [get]
func (h *PaymentHandler) GetNodePayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.paymentService.GetNodePayments(userID, nodeID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcomingPayments handles listing a scenario's payments due soon.
// @Summary     Get upcoming payments
// @Description Get the unpaid payments of a scenario falling due within the given days
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Scenario ID"
// @Param       days query int    false "Window in days (default 30)"
// @Success     200 {array} models.Payment "Upcoming payments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /scenarios/{id}/payments/upcoming [get]
func (h *PaymentHandler) GetUpcomingPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scenarioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid days"))
			return
		}
		days = parsed
	}

	payments, err := h.paymentService.UpcomingPayments(userID, scenarioID, time.Duration(days)*24*time.Hour)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// MarkPaid handles settling a payment.
// @Summary     Mark payment as paid
// @Description Settle a ledger entry, moving it into the effective spent figure
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true  "Payment ID"
// @Param       request body MarkPaidRequest false "Settlement time (defaults to now)"
// @Success     200 {object} models.Payment "Payment settled"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     409 {object} ErrorResponse "Payment already paid"
// @Router      /payments/{id}/pay [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	paymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment, err := h.paymentService.MarkPaid(userID, paymentID, paidAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_PAYMENT", "payment", paymentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// DeletePayment handles deleting a ledger entry.
// @Summary     Delete a payment
// @Description Delete a ledger entry
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} MessageResponse "Payment deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Router      /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	paymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.paymentService.DeletePayment(userID, paymentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PAYMENT", "payment", paymentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
