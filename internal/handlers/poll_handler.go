package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type PollHandler struct {
	BaseHandler
	pollService services.PollService
}

func NewPollHandler(pollService services.PollService, logger utils.Logger) *PollHandler {
	return &PollHandler{
		BaseHandler: NewBaseHandler(logger),
		pollService: pollService,
	}
}

// CreatePoll creates a poll with its questions
// @Summary Create poll
// @Tags polls
// @Accept json
// @Produce json
// @Param poll body models.PollCreateRequest true "Poll data"
// @Success 201 {object} models.Poll
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /polls [post]
func (h *PollHandler) CreatePoll(c *gin.Context) {
	var req models.PollCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	poll, err := h.pollService.Create(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// ListPolls lists polls filtered by status, type and creator
// @Summary List polls
// @Tags polls
// @Produce json
// @Param status query string false "draft, active or closed"
// @Param type query string false "survey, satisfaction, feedback or evaluation"
// @Param createdBy query int false "Creator id"
// @Success 200 {array} models.Poll
// @Router /polls [get]
func (h *PollHandler) ListPolls(c *gin.Context) {
	filter := models.PollFilter{
		Status:    models.PollStatus(c.Query("status")),
		Type:      models.PollType(c.Query("type")),
		CreatedBy: h.parseUintQueryPtr(c, "createdBy"),
	}

	polls, err := h.pollService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, polls)
}

// @Router /polls/active [get]
func (h *PollHandler) ListActivePolls(c *gin.Context) {
	polls, err := h.pollService.ListActive(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, polls)
}

// @Router /polls/my-polls [get]
func (h *PollHandler) ListMyPolls(c *gin.Context) {
	polls, err := h.pollService.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, polls)
}

// GetPoll returns a poll with its questions and counts a view
// @Summary Get poll
// @Tags polls
// @Produce json
// @Param id path int true "Poll ID"
// @Success 200 {object} models.Poll
// @Failure 404 {object} ErrorResponse
// @Router /polls/{id} [get]
func (h *PollHandler) GetPoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting poll", "poll_id", id)

	poll, err := h.pollService.View(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// @Router /polls/{id}/preview [get]
func (h *PollHandler) PreviewPoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	preview, err := h.pollService.Preview(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// UpdatePoll applies a partial update; a questions list replaces all questions
// @Summary Update poll
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Poll ID"
// @Param poll body models.PollUpdateRequest true "Changes"
// @Success 200 {object} models.Poll
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /polls/{id} [patch]
func (h *PollHandler) UpdatePoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.PollUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	poll, err := h.pollService.Update(c.Request.Context(), id, &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// @Router /polls/{id}/status [patch]
func (h *PollHandler) UpdatePollStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.PollStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	poll, err := h.pollService.UpdateStatus(c.Request.Context(), id, req.Status, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// @Router /polls/{id} [delete]
func (h *PollHandler) DeletePoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.pollService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Poll deleted successfully"})
}

// @Router /polls/{id}/clone [post]
func (h *PollHandler) ClonePoll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	poll, err := h.pollService.Clone(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// SubmitResponse records a respondent's answers
// @Summary Submit poll response
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Poll ID"
// @Param response body models.SubmitResponseRequest true "Answers"
// @Success 201 {object} models.PollResponse
// @Failure 400 {object} ErrorResponse "Poll closed, already answered or invalid answers"
// @Failure 403 {object} ErrorResponse "Poll requires authentication"
// @Router /polls/{id}/responses [post]
func (h *PollHandler) SubmitResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.SubmitResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	response, err := h.pollService.SubmitResponse(c.Request.Context(), id, &req, currentUser(c), sessionInfo(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Router /polls/{id}/responses [get]
func (h *PollHandler) GetResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	responses, err := h.pollService.GetResponses(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// @Router /polls/responses/{responseId} [get]
func (h *PollHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "responseId")
	if id == 0 {
		return
	}

	response, err := h.pollService.GetResponse(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetStatistics aggregates the completed responses per question
// @Summary Poll statistics
// @Tags polls
// @Produce json
// @Param id path int true "Poll ID"
// @Success 200 {object} models.PollStatistics
// @Failure 403 {object} ErrorResponse "Results are hidden"
// @Router /polls/{id}/statistics [get]
func (h *PollHandler) GetStatistics(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.pollService.GetStatistics(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResponses returns the responses as json, a csv file or an xlsx workbook
// @Summary Export poll responses
// @Tags polls
// @Produce json
// @Produce text/csv
// @Param id path int true "Poll ID"
// @Param format query string false "json (default), csv or xlsx"
// @Router /polls/{id}/export [get]
func (h *PollHandler) ExportResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportJSON)))
	export, err := h.pollService.Export(c.Request.Context(), id, format, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if export.Format == models.ExportJSON {
		c.JSON(http.StatusOK, export.Responses)
		return
	}

	file, err := services.EncodeExport(export, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if export.Format == models.ExportXLSX {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	}
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// ===== SUPPLIER POLLS =====

// @Router /polls/supplier-poll [post]
func (h *PollHandler) CreateSupplierPoll(c *gin.Context) {
	var req models.SupplierPollRequest
	if !h.bindJSON(c, &req) {
		return
	}

	poll, err := h.pollService.CreateSupplierPoll(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// @Router /polls/{id}/supplier-response [post]
func (h *PollHandler) SubmitSupplierResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.SupplierResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	response, err := h.pollService.SubmitSupplierResponse(c.Request.Context(), id, &req, sessionInfo(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ===== ADMINISTRATION =====

// BulkAction applies delete, activate or close to many polls and reports per poll results
// @Router /polls/admin/bulk-action [post]
func (h *PollHandler) BulkAction(c *gin.Context) {
	var req models.BulkActionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	results, err := h.pollService.BulkAction(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Bulk %s completed: %d of %d succeeded", req.Action, succeeded, len(results)),
		"results": results,
	})
}
