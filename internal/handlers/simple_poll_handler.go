package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type SimplePollHandler struct {
	BaseHandler
	simplePollService services.SimplePollService
}

func NewSimplePollHandler(simplePollService services.SimplePollService, logger utils.Logger) *SimplePollHandler {
	return &SimplePollHandler{
		BaseHandler:       NewBaseHandler(logger),
		simplePollService: simplePollService,
	}
}

// CreateSimplePoll stores one evaluation; the body may be an object or an array of objects
// @Summary Submit simple poll
// @Tags simple-polls
// @Accept json
// @Produce json
// @Success 201 {object} models.SimplePoll
// @Failure 400 {object} ErrorResponse
// @Router /simple-polls [post]
func (h *SimplePollHandler) CreateSimplePoll(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	reqs, err := decodeSimplePolls(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	polls, err := h.simplePollService.Create(c.Request.Context(), reqs, sessionInfo(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if len(polls) == 1 {
		c.JSON(http.StatusCreated, polls[0])
		return
	}
	c.JSON(http.StatusCreated, polls)
}

// decodeSimplePolls accepts a single object or an array of them
func decodeSimplePolls(body []byte) ([]models.SimplePollRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []models.SimplePollRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	var req models.SimplePollRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []models.SimplePollRequest{req}, nil
}

// @Router /simple-polls [get]
func (h *SimplePollHandler) ListSimplePolls(c *gin.Context) {
	polls, err := h.simplePollService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, polls)
}

// @Router /simple-polls/statistics [get]
func (h *SimplePollHandler) GetStatistics(c *gin.Context) {
	stats, err := h.simplePollService.Statistics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Router /simple-polls/{id} [get]
func (h *SimplePollHandler) GetSimplePoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	poll, err := h.simplePollService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// @Router /simple-polls/{id} [delete]
func (h *SimplePollHandler) DeleteSimplePoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.simplePollService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Poll deleted successfully"})
}
