package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type PersonnelHandler struct {
	BaseHandler
	personnelService services.PersonnelService
}

func NewPersonnelHandler(personnelService services.PersonnelService, logger utils.Logger) *PersonnelHandler {
	return &PersonnelHandler{
		BaseHandler:      NewBaseHandler(logger),
		personnelService: personnelService,
	}
}

// ListPersonnel returns a page of personnel
// @Summary List personnel
// @Tags personnel
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param type query string false "manager, assistant or managers"
// @Param name query string false "Name contains"
// @Param position query string false "Position contains"
// @Param search query string false "Name, position, education or workplace contains"
// @Success 200 {object} models.PersonnelPage
// @Router /personnel [get]
func (h *PersonnelHandler) ListPersonnel(c *gin.Context) {
	page, err := h.personnelService.List(c.Request.Context(), h.listParams(c, models.PersonnelType(c.Query("type"))))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /personnel/type/{type} [get]
func (h *PersonnelHandler) ListPersonnelByType(c *gin.Context) {
	page, err := h.personnelService.List(c.Request.Context(), h.listParams(c, models.PersonnelType(c.Param("type"))))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PersonnelHandler) listParams(c *gin.Context, personnelType models.PersonnelType) models.PersonnelListParams {
	return models.PersonnelListParams{
		Page:     h.parseIntQuery(c, "page", 1),
		Limit:    h.parseIntQuery(c, "limit", 10),
		Type:     personnelType,
		Name:     c.Query("name"),
		Position: c.Query("position"),
		Search:   c.Query("search"),
	}
}

// @Router /personnel/{id} [get]
func (h *PersonnelHandler) GetPersonnel(c *gin.Context) {
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	personnel, err := h.personnelService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, personnel)
}

// CreatePersonnel creates a record from form fields and an optional "image" file
// @Router /personnel [post]
func (h *PersonnelHandler) CreatePersonnel(c *gin.Context) {
	var req models.PersonnelRequest
	if !h.bindForm(c, &req) {
		return
	}

	personnel, err := h.personnelService.Create(c.Request.Context(), &req, optionalFile(c, "image"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, personnel)
}

// @Router /personnel/{id} [patch]
func (h *PersonnelHandler) UpdatePersonnel(c *gin.Context) {
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req models.PersonnelRequest
	if !h.bindForm(c, &req) {
		return
	}

	personnel, err := h.personnelService.Update(c.Request.Context(), id, &req, optionalFile(c, "image"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, personnel)
}

// @Router /personnel/{id} [delete]
func (h *PersonnelHandler) DeletePersonnel(c *gin.Context) {
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.personnelService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Personnel deleted successfully"})
}
