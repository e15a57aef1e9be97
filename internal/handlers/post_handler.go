package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type PostHandler struct {
	BaseHandler
	postService services.PostService
}

func NewPostHandler(postService services.PostService, logger utils.Logger) *PostHandler {
	return &PostHandler{
		BaseHandler: NewBaseHandler(logger),
		postService: postService,
	}
}

// ListPosts returns a page of posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param section query string false "Section label"
// @Param title query string false "Title contains"
// @Param tags query string false "Comma separated tags, any match"
// @Param categoryId query int false "Category"
// @Param sort query string false "newest, oldest or most_viewed"
// @Success 200 {object} models.PostPage
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	params := models.PostListParams{
		Page:       h.parseIntQuery(c, "page", 1),
		Limit:      h.parseIntQuery(c, "limit", 10),
		Section:    models.PostSection(c.Query("section")),
		Title:      c.Query("title"),
		CategoryID: h.parseUintQueryPtr(c, "categoryId"),
		Sort:       models.PostSort(c.Query("sort")),
		ActiveOnly: c.Query("isActive") == "true",
	}
	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}

	page, err := h.postService.List(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	post, err := h.postService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Router /posts/{id}/view [post]
func (h *PostHandler) RecordView(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.postService.RecordView(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "View recorded"})
}

// CreatePost creates a post
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body models.PostCreateRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown category"
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.PostCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// @Router /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.PostUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), id, &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Post deleted successfully"})
}

// ===== COMMENTS =====

// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CommentCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	comments, err := h.postService.ListComments(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// UploadContentImages stores up to 10 images sent as the "images" form field
// @Router /posts/upload-content-images [post]
func (h *PostHandler) UploadContentImages(c *gin.Context) {
	uploaded, err := h.postService.UploadContentImages(c.Request.Context(), formFiles(c, "images"), currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploaded)
}
