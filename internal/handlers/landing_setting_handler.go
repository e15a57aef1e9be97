package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type LandingSettingHandler struct {
	BaseHandler
	settingService services.LandingSettingService
}

func NewLandingSettingHandler(settingService services.LandingSettingService, logger utils.Logger) *LandingSettingHandler {
	return &LandingSettingHandler{
		BaseHandler:    NewBaseHandler(logger),
		settingService: settingService,
	}
}

// @Router /landing-settings [get]
func (h *LandingSettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetSettingByKey is the public lookup used by the landing page
// @Router /landing-settings/key/{key} [get]
func (h *LandingSettingHandler) GetSettingByKey(c *gin.Context) {
	key := h.parseStringIDParam(c, "key")
	if key == "" {
		return
	}

	setting, err := h.settingService.GetByKey(c.Request.Context(), key)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// @Router /landing-settings/{id} [get]
func (h *LandingSettingHandler) GetSetting(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	setting, err := h.settingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// @Router /landing-settings [post]
func (h *LandingSettingHandler) CreateSetting(c *gin.Context) {
	var req models.LandingSettingRequest
	if !h.bindForm(c, &req) {
		return
	}

	setting, err := h.settingService.Create(c.Request.Context(), &req, optionalFile(c, "image"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, setting)
}

// @Router /landing-settings/{id} [patch]
func (h *LandingSettingHandler) UpdateSetting(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.LandingSettingUpdateRequest
	if !h.bindForm(c, &req) {
		return
	}

	setting, err := h.settingService.Update(c.Request.Context(), id, &req, optionalFile(c, "image"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// @Router /landing-settings/{id} [delete]
func (h *LandingSettingHandler) DeleteSetting(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.settingService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Landing setting deleted successfully"})
}
