package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/utils"
)

type MediaHandler struct {
	BaseHandler
	mediaService services.MediaService
}

func NewMediaHandler(mediaService services.MediaService, logger utils.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler:  NewBaseHandler(logger),
		mediaService: mediaService,
	}
}

// ListMedia returns MediaItems with a meta block
// @Summary List media
// @Tags media
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param type query string false "image, video, gallery, iframe or url"
// @Success 200 {object} models.MediaPage
// @Router /media [get]
func (h *MediaHandler) ListMedia(c *gin.Context) {
	params := models.MediaListParams{
		Page:  h.parseIntQuery(c, "page", 1),
		Limit: h.parseIntQuery(c, "limit", 20),
		Type:  models.MediaType(c.Query("type")),
	}

	page, err := h.mediaService.List(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /media/{id} [get]
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	media, err := h.mediaService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

// Upload stores one image or video sent as the "file" form field
// @Summary Upload media
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or video"
// @Param title formData string false "Title"
// @Success 201 {object} models.Media
// @Failure 400 {object} ErrorResponse "Missing, oversized or unsupported file"
// @Router /media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	file := optionalFile(c, "file")
	if file == nil {
		h.handleServiceError(c, storage.ErrNoFile)
		return
	}

	media, err := h.mediaService.Upload(c.Request.Context(), file, c.PostForm("title"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// CreateExternal registers a url, an iframe or a gallery of uploaded "files"
// @Router /media/external [post]
func (h *MediaHandler) CreateExternal(c *gin.Context) {
	var req models.MediaExternalRequest
	if !h.bindForm(c, &req) {
		return
	}

	media, err := h.mediaService.CreateExternal(c.Request.Context(), &req, formFiles(c, "files"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// @Router /media/{id} [delete]
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Media deleted successfully"})
}
