package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "aisle/internal/errors"
	"aisle/internal/pagination"
	"aisle/internal/services"
)

// ScenarioHandler handles budget scenario requests.
type ScenarioHandler struct {
	scenarioService services.ScenarioServicer
	auditService    services.AuditServicer
}

// NewScenarioHandler creates a new ScenarioHandler.
func NewScenarioHandler(scenarioService services.ScenarioServicer, auditService services.AuditServicer) *ScenarioHandler {
	return &ScenarioHandler{scenarioService: scenarioService, auditService: auditService}
}

// CreateScenarioRequest represents the request payload for creating a scenario.
type CreateScenarioRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	EventDate   *time.Time      `json:"event_date"`
	Currency    string          `json:"currency" binding:"omitempty,iso4217"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	Notes       string          `json:"notes" binding:"max=2000"`
}

// UpdateScenarioRequest represents the request payload for updating a scenario.
type UpdateScenarioRequest struct {
	Name        string           `json:"name" binding:"omitempty,min=1,max=100"`
	EventDate   *time.Time       `json:"event_date"`
	TotalBudget *decimal.Decimal `json:"total_budget"`
	Notes       *string          `json:"notes" binding:"omitempty,max=2000"`
}

// CreateScenario handles the creation of a new budget scenario.
// @Summary     Create a scenario
// @Description Create a new wedding budget scenario
// @Tags        scenarios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateScenarioRequest true "Scenario details"
// @Success     201 {object} models.Scenario "Scenario created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /scenarios [post]
func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	scenario, err := h.scenarioService.CreateScenario(userID, req.Name, req.EventDate, req.Currency, req.TotalBudget, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SCENARIO", "scenario", scenario.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "total_budget": req.TotalBudget.String()})

	c.JSON(http.StatusCreated, gin.H{"scenario": scenario})
}

// GetScenarios handles listing scenarios for the authenticated user.
// @Summary     Get scenarios
// @Description Get a paginated list of the user's budget scenarios
// @Tags        scenarios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Scenario] "Paginated scenarios"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /scenarios [get]
func (h *ScenarioHandler) GetScenarios(c *gin.Context) {
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

	result, err := h.scenarioService.GetUserScenarios(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScenario handles the retrieval of a single scenario.
// @Summary     Get scenario by ID
// @Description Get one budget scenario by ID
// @Tags        scenarios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Scenario ID"
// @Success     200 {object} models.Scenario "Scenario details"
// @Failure     400 {object} ErrorResponse "Invalid scenario ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario not found"
// @Router      /scenarios/{id} [get]
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
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

	scenario, err := h.scenarioService.GetScenarioByID(userID, scenarioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scenario": scenario})
}

// UpdateScenario handles scenario updates.
// @Summary     Update a scenario
// @Description Update a budget scenario's fields
// @Tags        scenarios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Scenario ID"
// @Param       request body UpdateScenarioRequest true "Fields to update"
// @Success     200 {object} models.Scenario "Scenario updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario not found"
// @Router      /scenarios/{id} [put]
func (h *ScenarioHandler) UpdateScenario(c *gin.Context) {
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

	var req UpdateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	scenario, err := h.scenarioService.UpdateScenario(userID, scenarioID, req.Name, req.EventDate, req.TotalBudget, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SCENARIO", "scenario", scenarioID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"scenario": scenario})
}

// DeleteScenario handles scenario deletion.
// @Summary     Delete a scenario
// @Description Delete a budget scenario with its entire node tree and payments
// @Tags        scenarios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Scenario ID"
// @Success     200 {object} MessageResponse "Scenario deleted"
// @Failure     400 {object} ErrorResponse "Invalid scenario ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario not found"
// @Router      /scenarios/{id} [delete]
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
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

	if err := h.scenarioService.DeleteScenario(userID, scenarioID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SCENARIO", "scenario", scenarioID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Scenario deleted successfully"})
}
