package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

// DashboardHandler serves the admin overview endpoints
type DashboardHandler struct {
	BaseHandler
	pollService   services.PollService
	ticketService services.TicketService
}

func NewDashboardHandler(pollService services.PollService, ticketService services.TicketService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:   NewBaseHandler(logger),
		pollService:   pollService,
		ticketService: ticketService,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetPollDashboard returns poll totals by status, summed counters and the latest polls
// @Summary Poll dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.PollDashboard
// @Failure 403 {object} ErrorResponse "Admin only"
// @Router /polls/admin/dashboard [get]
func (h *DashboardHandler) GetPollDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting poll dashboard")

	dashboard, err := h.pollService.Dashboard(c.Request.Context(), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetTicketStats returns ticket counts per status
// @Summary Ticket statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.TicketStats
// @Failure 403 {object} ErrorResponse "Admin only"
// @Router /tickets/stats [get]
func (h *DashboardHandler) GetTicketStats(c *gin.Context) {
	h.LogRequest(c, "Getting ticket stats")

	stats, err := h.ticketService.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
