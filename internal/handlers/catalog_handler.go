package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

// CatalogHandler serves categories and products
type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ===== CATEGORIES =====

// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Router /categories/slug/{slug} [get]
func (h *CatalogHandler) GetCategoryBySlug(c *gin.Context) {
	slug := h.parseStringIDParam(c, "slug")
	if slug == "" {
		return
	}

	category, err := h.catalogService.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Router /categories/{id}/children [get]
func (h *CatalogHandler) GetCategoryChildren(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	children, err := h.catalogService.CategoryChildren(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, children)
}

// CreateCategory creates a category; name and slug must be unique
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body models.CategoryCreateRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 409 {object} ErrorResponse "Name or slug taken"
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// @Router /categories/{id} [patch]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CategoryUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Category deleted successfully"})
}

// ===== PRODUCTS =====

// ListProducts returns {items, pagination}
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param type query string false "cement, concrete or other"
// @Param name query string false "Name contains"
// @Param search query string false "Name or description contains"
// @Param categoryId query int false "Category"
// @Success 200 {object} models.ProductPage
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	params := models.ProductListParams{
		Page:       h.parseIntQuery(c, "page", 1),
		Limit:      h.parseIntQuery(c, "limit", 10),
		Type:       models.ProductType(c.Query("type")),
		Name:       c.Query("name"),
		Search:     c.Query("search"),
		CategoryID: h.parseUintQueryPtr(c, "categoryId"),
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req models.ProductCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// @Router /products/{id} [patch]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.ProductUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id, currentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted successfully"})
}
