package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aisle/internal/services"
)

// DashboardHandler handles scenario dashboard requests.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetScenarioSummary handles the retrieval of a scenario's dashboard rollup.
// @Summary     Get scenario summary
// @Description Get scenario-wide totals, root folder cards, payment counts, and vendor spend
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Scenario ID"
// @Success     200 {object} services.ScenarioSummary "Scenario summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario not found"
// @Router      /scenarios/{id}/summary [get]
func (h *DashboardHandler) GetScenarioSummary(c *gin.Context) {
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

	summary, err := h.dashboardService.GetScenarioSummary(userID, scenarioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
