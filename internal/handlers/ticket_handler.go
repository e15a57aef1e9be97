package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type TicketHandler struct {
	BaseHandler
	ticketService services.TicketService
}

func NewTicketHandler(ticketService services.TicketService, logger utils.Logger) *TicketHandler {
	return &TicketHandler{
		BaseHandler:   NewBaseHandler(logger),
		ticketService: ticketService,
	}
}

// ListTickets returns the caller's tickets; admins see all of them
// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param status query string false "open, pending, resolved or closed"
// @Success 200 {object} models.TicketPage
// @Router /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	params := models.TicketListParams{
		Page:   h.parseIntQuery(c, "page", 1),
		Limit:  h.parseIntQuery(c, "limit", 20),
		Status: models.TicketStatus(c.Query("status")),
		UserID: h.parseUintQueryPtr(c, "userId"),
	}

	page, err := h.ticketService.List(c.Request.Context(), params, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /tickets/{id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	ticket, err := h.ticketService.GetByID(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// CreateTicket opens a ticket with its first message and an optional "attachment" file
// @Router /tickets [post]
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req models.TicketCreateRequest
	if !h.bindForm(c, &req) {
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), &req, optionalFile(c, "attachment"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// Reply adds a message as the caller; the sender is admin when the caller is an admin
// @Router /tickets/{id}/reply [post]
// @Router /tickets/admin/{id}/reply [post]
func (h *TicketHandler) Reply(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.TicketReplyRequest
	if !h.bindForm(c, &req) {
		return
	}

	message, err := h.ticketService.Reply(c.Request.Context(), id, &req, optionalFile(c, "attachment"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// @Router /tickets/{id}/status [patch]
// @Router /tickets/admin/{id}/status [patch]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.TicketStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ticket, err := h.ticketService.UpdateStatus(c.Request.Context(), id, req.Status, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Router /tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Ticket deleted successfully"})
}
