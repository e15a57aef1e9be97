package services

import (
	"context"
	"mime/multipart"

	"github.com/darab-cement/cms-service/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

type UserPage struct {
	Data []models.User   `json:"data"`
	Meta models.PageMeta `json:"meta"`
}

// PollPreview is the public, respondent facing shape of a poll
type PollPreview struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description *string               `json:"description"`
	Type        models.PollType       `json:"type"`
	Questions   []PollPreviewQuestion `json:"questions"`
	Metadata    map[string]any        `json:"metadata"`
}

type PollPreviewQuestion struct {
	ID           uint                    `json:"id"`
	Question     string                  `json:"question"`
	Description  *string                 `json:"description"`
	Type         models.QuestionType     `json:"type"`
	Required     bool                    `json:"required"`
	Options      []models.QuestionOption `json:"options"`
	RatingConfig *models.RatingConfig    `json:"ratingConfig"`
	MatrixConfig *models.MatrixConfig    `json:"matrixConfig"`
	AllowOther   bool                    `json:"allowOther"`
	Placeholder  string                  `json:"placeholder"`
}

// ExportFile is an encoded export ready to be written to the client
type ExportFile struct {
	ContentType string
	Filename    string
	Body        []byte
}

type UploadedImages struct {
	URLs []string `json:"urls"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Authenticate resolves a bearer token to an active local user; SSO tokens are linked on first use
	Authenticate(ctx context.Context, token string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
	SeedAdmin(ctx context.Context, email, password string) error
}

type UserService interface {
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.User, error)
	List(ctx context.Context, params models.UserListParams, actor *models.User) (*UserPage, error)
	Update(ctx context.Context, id uint, req *models.UserUpdateRequest, actor *models.User) (*models.User, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type PollService interface {
	// Authoring
	Create(ctx context.Context, req *models.PollCreateRequest, actor *models.User) (*models.Poll, error)
	Update(ctx context.Context, id uint, req *models.PollUpdateRequest, actor *models.User) (*models.Poll, error)
	UpdateStatus(ctx context.Context, id uint, status models.PollStatus, actor *models.User) (*models.Poll, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	Clone(ctx context.Context, id uint, actor *models.User) (*models.Poll, error)

	// Reads; View counts a view, Preview does not
	List(ctx context.Context, filter models.PollFilter) ([]models.Poll, error)
	ListActive(ctx context.Context) ([]models.Poll, error)
	ListMine(ctx context.Context, actor *models.User) ([]models.Poll, error)
	View(ctx context.Context, id uint) (*models.Poll, error)
	Preview(ctx context.Context, id uint) (*PollPreview, error)

	// Responses
	SubmitResponse(ctx context.Context, pollID uint, req *models.SubmitResponseRequest, actor *models.User, session models.SessionInfo) (*models.PollResponse, error)
	GetResponses(ctx context.Context, pollID uint, actor *models.User) ([]models.PollResponse, error)
	GetResponse(ctx context.Context, responseID uint, actor *models.User) (*models.PollResponse, error)

	// Results
	GetStatistics(ctx context.Context, pollID uint) (*models.PollStatistics, error)
	Export(ctx context.Context, pollID uint, format models.ExportFormat, actor *models.User) (*models.PollExport, error)

	// Supplier satisfaction polls
	CreateSupplierPoll(ctx context.Context, req *models.SupplierPollRequest, actor *models.User) (*models.Poll, error)
	SubmitSupplierResponse(ctx context.Context, pollID uint, req *models.SupplierResponseRequest, session models.SessionInfo) (*models.PollResponse, error)
	SeedSupplierPoll(ctx context.Context) (*models.Poll, error)

	// Administration
	BulkAction(ctx context.Context, req *models.BulkActionRequest, actor *models.User) ([]models.BulkActionResult, error)
	Dashboard(ctx context.Context, actor *models.User) (*models.PollDashboard, error)
}

type SimplePollService interface {
	Create(ctx context.Context, reqs []models.SimplePollRequest, session models.SessionInfo) ([]models.SimplePoll, error)
	GetByID(ctx context.Context, id uint) (*models.SimplePoll, error)
	List(ctx context.Context) ([]models.SimplePoll, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	Statistics(ctx context.Context) (*models.SimplePollStatistics, error)
}

type PostService interface {
	Create(ctx context.Context, req *models.PostCreateRequest, actor *models.User) (*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, params models.PostListParams) (*models.PostPage, error)
	Update(ctx context.Context, id uint, req *models.PostUpdateRequest, actor *models.User) (*models.Post, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	RecordView(ctx context.Context, id uint) error

	AddComment(ctx context.Context, postID uint, req *models.CommentCreateRequest) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)

	UploadContentImages(ctx context.Context, files []*multipart.FileHeader, actor *models.User) (*UploadedImages, error)
}

type CatalogService interface {
	CreateCategory(ctx context.Context, req *models.CategoryCreateRequest, actor *models.User) (*models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryChildren(ctx context.Context, parentID uint) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id uint, req *models.CategoryUpdateRequest, actor *models.User) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint, actor *models.User) error

	CreateProduct(ctx context.Context, req *models.ProductCreateRequest, actor *models.User) (*models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, params models.ProductListParams) (*models.ProductPage, error)
	UpdateProduct(ctx context.Context, id uint, req *models.ProductUpdateRequest, actor *models.User) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint, actor *models.User) error
}

type MediaService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, title string, actor *models.User) (*models.Media, error)
	CreateExternal(ctx context.Context, req *models.MediaExternalRequest, files []*multipart.FileHeader, actor *models.User) (*models.Media, error)
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	List(ctx context.Context, params models.MediaListParams) (*models.MediaPage, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type PersonnelService interface {
	Create(ctx context.Context, req *models.PersonnelRequest, image *multipart.FileHeader, actor *models.User) (*models.Personnel, error)
	GetByID(ctx context.Context, id string) (*models.Personnel, error)
	List(ctx context.Context, params models.PersonnelListParams) (*models.PersonnelPage, error)
	Update(ctx context.Context, id string, req *models.PersonnelRequest, image *multipart.FileHeader, actor *models.User) (*models.Personnel, error)
	Delete(ctx context.Context, id string, actor *models.User) error
}

type TicketService interface {
	Create(ctx context.Context, req *models.TicketCreateRequest, attachment *multipart.FileHeader, actor *models.User) (*models.Ticket, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.Ticket, error)
	List(ctx context.Context, params models.TicketListParams, actor *models.User) (*models.TicketPage, error)
	Reply(ctx context.Context, id uint, req *models.TicketReplyRequest, attachment *multipart.FileHeader, actor *models.User) (*models.TicketMessage, error)
	UpdateStatus(ctx context.Context, id uint, status models.TicketStatus, actor *models.User) (*models.Ticket, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	Stats(ctx context.Context, actor *models.User) (*models.TicketStats, error)
}

type LandingSettingService interface {
	Create(ctx context.Context, req *models.LandingSettingRequest, image *multipart.FileHeader, actor *models.User) (*models.LandingSetting, error)
	GetByID(ctx context.Context, id uint) (*models.LandingSetting, error)
	GetByKey(ctx context.Context, key string) (*models.LandingSetting, error)
	List(ctx context.Context) ([]models.LandingSetting, error)
	Update(ctx context.Context, id uint, req *models.LandingSettingUpdateRequest, image *multipart.FileHeader, actor *models.User) (*models.LandingSetting, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

// ServiceManager owns the lifecycle of every service
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Poll() PollService
	SimplePoll() SimplePollService
	Post() PostService
	Catalog() CatalogService
	Media() MediaService
	Personnel() PersonnelService
	Ticket() TicketService
	LandingSetting() LandingSettingService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
