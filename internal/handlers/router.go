package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/metrics"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/utils"
)

type HandlerManager struct {
	authHandler           *AuthHandler
	userHandler           *UserHandler
	pollHandler           *PollHandler
	simplePollHandler     *SimplePollHandler
	dashboardHandler      *DashboardHandler
	postHandler           *PostHandler
	catalogHandler        *CatalogHandler
	mediaHandler          *MediaHandler
	personnelHandler      *PersonnelHandler
	ticketHandler         *TicketHandler
	landingSettingHandler *LandingSettingHandler
	authMiddleware        *AuthMiddleware

	serviceManager services.ServiceManager
	metrics        *metrics.Metrics
	upload         config.UploadConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	m *metrics.Metrics,
	upload config.UploadConfig,
) *HandlerManager {
	return &HandlerManager{
		authHandler:           NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:           NewUserHandler(serviceManager.User(), logger),
		pollHandler:           NewPollHandler(serviceManager.Poll(), logger),
		simplePollHandler:     NewSimplePollHandler(serviceManager.SimplePoll(), logger),
		dashboardHandler:      NewDashboardHandler(serviceManager.Poll(), serviceManager.Ticket(), logger),
		postHandler:           NewPostHandler(serviceManager.Post(), logger),
		catalogHandler:        NewCatalogHandler(serviceManager.Catalog(), logger),
		mediaHandler:          NewMediaHandler(serviceManager.Media(), logger),
		personnelHandler:      NewPersonnelHandler(serviceManager.Personnel(), logger),
		ticketHandler:         NewTicketHandler(serviceManager.Ticket(), logger),
		landingSettingHandler: NewLandingSettingHandler(serviceManager.LandingSetting(), logger),
		authMiddleware:        NewAuthMiddleware(serviceManager.Auth()),
		serviceManager:        serviceManager,
		metrics:               m,
		upload:                upload,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	// Locally stored uploads; remote backends return absolute URLs
	if strings.HasPrefix(hm.upload.BaseURL, "/") && hm.upload.Dir != "" {
		router.Static(hm.upload.BaseURL, hm.upload.Dir)
	}

	auth := hm.authMiddleware.RequireAuth()
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.GET("/me", auth, hm.authHandler.Me)
		authRoutes.GET("/verify", auth, hm.authHandler.Verify)
	}

	users := api.Group("/users", auth, adminOnly)
	{
		users.GET("", hm.userHandler.ListUsers)
		users.GET("/:id", hm.userHandler.GetUser)
		users.PATCH("/:id", hm.userHandler.UpdateUser)
		users.DELETE("/:id", hm.userHandler.DeleteUser)
	}

	polls := api.Group("/polls")
	{
		// Public reads and submissions
		polls.GET("", hm.pollHandler.ListPolls)
		polls.GET("/active", hm.pollHandler.ListActivePolls)
		polls.GET("/:id", hm.pollHandler.GetPoll)
		polls.GET("/:id/preview", hm.pollHandler.PreviewPoll)
		polls.GET("/:id/statistics", hm.pollHandler.GetStatistics)
		polls.POST("/:id/responses", hm.authMiddleware.OptionalAuth(), hm.pollHandler.SubmitResponse)
		polls.POST("/:id/supplier-response", hm.authMiddleware.OptionalAuth(), hm.pollHandler.SubmitSupplierResponse)

		// Authoring
		polls.POST("", auth, hm.pollHandler.CreatePoll)
		polls.GET("/my-polls", auth, hm.pollHandler.ListMyPolls)
		polls.PATCH("/:id", auth, hm.pollHandler.UpdatePoll)
		polls.PATCH("/:id/status", auth, hm.pollHandler.UpdatePollStatus)
		polls.DELETE("/:id", auth, hm.pollHandler.DeletePoll)
		polls.POST("/:id/clone", auth, hm.pollHandler.ClonePoll)
		polls.POST("/supplier-poll", auth, hm.pollHandler.CreateSupplierPoll)

		// Results
		polls.GET("/:id/responses", auth, hm.pollHandler.GetResponses)
		polls.GET("/:id/export", auth, hm.pollHandler.ExportResponses)
		polls.GET("/responses/:responseId", auth, hm.pollHandler.GetResponse)

		polls.POST("/admin/bulk-action", auth, adminOnly, hm.pollHandler.BulkAction)
		polls.GET("/admin/dashboard", auth, adminOnly, hm.dashboardHandler.GetPollDashboard)
	}

	simplePolls := api.Group("/simple-polls")
	{
		simplePolls.POST("", hm.simplePollHandler.CreateSimplePoll)
		simplePolls.GET("", hm.simplePollHandler.ListSimplePolls)
		simplePolls.GET("/statistics", hm.simplePollHandler.GetStatistics)
		simplePolls.GET("/:id", hm.simplePollHandler.GetSimplePoll)
		simplePolls.DELETE("/:id", auth, adminOnly, hm.simplePollHandler.DeleteSimplePoll)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", hm.postHandler.ListPosts)
		posts.GET("/:id", hm.postHandler.GetPost)
		posts.POST("/:id/view", hm.postHandler.RecordView)
		posts.POST("/:id/comments", hm.postHandler.AddComment)
		posts.GET("/:id/comments", hm.postHandler.ListComments)

		posts.POST("", auth, hm.postHandler.CreatePost)
		posts.POST("/upload-content-images", auth, hm.postHandler.UploadContentImages)
		posts.PATCH("/:id", auth, hm.postHandler.UpdatePost)
		posts.DELETE("/:id", auth, hm.postHandler.DeletePost)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", hm.catalogHandler.ListCategories)
		categories.GET("/slug/:slug", hm.catalogHandler.GetCategoryBySlug)
		categories.GET("/:id", hm.catalogHandler.GetCategory)
		categories.GET("/:id/children", hm.catalogHandler.GetCategoryChildren)

		categories.POST("", auth, hm.catalogHandler.CreateCategory)
		categories.PATCH("/:id", auth, hm.catalogHandler.UpdateCategory)
		categories.DELETE("/:id", auth, hm.catalogHandler.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.GET("", hm.catalogHandler.ListProducts)
		products.GET("/:id", hm.catalogHandler.GetProduct)

		products.POST("", auth, hm.catalogHandler.CreateProduct)
		products.PATCH("/:id", auth, hm.catalogHandler.UpdateProduct)
		products.DELETE("/:id", auth, hm.catalogHandler.DeleteProduct)
	}

	media := api.Group("/media")
	{
		media.GET("", hm.mediaHandler.ListMedia)
		media.GET("/:id", auth, hm.mediaHandler.GetMedia)
		media.POST("/upload", auth, hm.mediaHandler.Upload)
		media.POST("/external", auth, hm.mediaHandler.CreateExternal)
		media.DELETE("/:id", auth, hm.mediaHandler.DeleteMedia)
	}

	personnel := api.Group("/personnel")
	{
		personnel.GET("", hm.personnelHandler.ListPersonnel)
		personnel.GET("/type/:type", hm.personnelHandler.ListPersonnelByType)
		personnel.GET("/:id", hm.personnelHandler.GetPersonnel)

		personnel.POST("", auth, adminOnly, hm.personnelHandler.CreatePersonnel)
		personnel.PATCH("/:id", auth, adminOnly, hm.personnelHandler.UpdatePersonnel)
		personnel.DELETE("/:id", auth, adminOnly, hm.personnelHandler.DeletePersonnel)
	}

	tickets := api.Group("/tickets", auth)
	{
		tickets.GET("", hm.ticketHandler.ListTickets)
		tickets.GET("/:id", hm.ticketHandler.GetTicket)
		tickets.POST("", hm.ticketHandler.CreateTicket)
		tickets.POST("/:id/reply", hm.ticketHandler.Reply)
		tickets.PATCH("/:id/status", hm.ticketHandler.UpdateStatus)
		tickets.DELETE("/:id", hm.ticketHandler.DeleteTicket)

		tickets.GET("/stats", adminOnly, hm.dashboardHandler.GetTicketStats)
		tickets.GET("/admin/all", adminOnly, hm.ticketHandler.ListTickets)
		tickets.POST("/admin/:id/reply", adminOnly, hm.ticketHandler.Reply)
		tickets.PATCH("/admin/:id/status", adminOnly, hm.ticketHandler.UpdateStatus)
	}

	settings := api.Group("/landing-settings")
	{
		settings.GET("/key/:key", hm.landingSettingHandler.GetSettingByKey)

		settings.GET("", auth, hm.landingSettingHandler.ListSettings)
		settings.GET("/:id", auth, hm.landingSettingHandler.GetSetting)
		settings.POST("", auth, hm.landingSettingHandler.CreateSetting)
		settings.PATCH("/:id", auth, hm.landingSettingHandler.UpdateSetting)
		settings.DELETE("/:id", auth, hm.landingSettingHandler.DeleteSetting)
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "darab-cms",
	})
}
