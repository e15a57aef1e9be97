package models

// ===== AUTH & USERS =====

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        UserSummary `json:"user"`
	AccessToken string      `json:"access_token"`
}

type UserUpdateRequest struct {
	FullName *string   `json:"fullName" validate:"omitempty,max=255"`
	Role     *UserRole `json:"role" validate:"omitempty,user_role"`
	IsActive *bool     `json:"isActive"`
}

type UserListParams struct {
	Page   int
	Limit  int
	Search string
	Role   UserRole
}

// ===== POSTS =====

type PostSort string

const (
	SortNewest     PostSort = "newest"
	SortOldest     PostSort = "oldest"
	SortMostViewed PostSort = "most_viewed"
)

type AttachmentInput struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"required"`
}

type PostCreateRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=255"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Section     PostSection       `json:"section" validate:"omitempty,post_section"`
	Content     string            `json:"content"`
	LeadPicture *string           `json:"leadPicture"`
	IsActive    *bool             `json:"isActive"`
	ReadingTime *int              `json:"readingTime" validate:"omitempty,min=1"`
	CategoryID  *uint             `json:"categoryId"`
	Gallery     []string          `json:"gallery"`
	Attachments []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

type PostUpdateRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description"`
	Tags        []string          `json:"tags"`
	Section     *PostSection      `json:"section" validate:"omitempty,post_section"`
	Content     *string           `json:"content"`
	LeadPicture *string           `json:"leadPicture"`
	IsActive    *bool             `json:"isActive"`
	ReadingTime *int              `json:"readingTime" validate:"omitempty,min=1"`
	CategoryID  *uint             `json:"categoryId"`
	Gallery     []string          `json:"gallery"`
	Attachments []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

type PostListParams struct {
	Page       int
	Limit      int
	Section    PostSection
	Title      string
	Tags       []string
	CategoryID *uint
	Sort       PostSort
	ActiveOnly bool
}

type CommentCreateRequest struct {
	Content string        `json:"content" validate:"required,min=1"`
	Author  CommentAuthor `json:"author"`
	Rating  int           `json:"rating" validate:"required,min=1,max=5"`
}

type PageMeta struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
}

type PostPage struct {
	Data []Post   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// ===== CATALOG =====

type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Slug        string  `json:"slug" validate:"required,slug,max=100"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parentId"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=100"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parentId"`
}

type ProductCreateRequest struct {
	Name           string      `json:"name" validate:"required,min=1,max=255"`
	Description    string      `json:"description"`
	Type           ProductType `json:"type" validate:"omitempty,product_type"`
	Image          *string     `json:"image"`
	Features       []string    `json:"features"`
	Advantages     []string    `json:"advantages"`
	Applications   []string    `json:"applications"`
	TechnicalSpecs []string    `json:"technicalSpecs"`
	CategoryID     *uint       `json:"categoryId"`
}

type ProductUpdateRequest struct {
	Name           *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Description    *string      `json:"description"`
	Type           *ProductType `json:"type" validate:"omitempty,product_type"`
	Image          *string      `json:"image"`
	Features       []string     `json:"features"`
	Advantages     []string     `json:"advantages"`
	Applications   []string     `json:"applications"`
	TechnicalSpecs []string     `json:"technicalSpecs"`
	CategoryID     *uint        `json:"categoryId"`
}

type ProductListParams struct {
	Page       int
	Limit      int
	Type       ProductType
	Name       string
	Search     string
	CategoryID *uint
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type ProductPage struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ===== MEDIA =====

type MediaListParams struct {
	Page  int
	Limit int
	Type  MediaType
}

type MediaExternalRequest struct {
	Type        MediaType `json:"type" form:"type" validate:"required,media_type"`
	Title       string    `json:"title" form:"title" validate:"required,max=255"`
	Description *string   `json:"description" form:"description"`
	URL         string    `json:"url" form:"url"`
	CoverImage  *string   `json:"coverImage" form:"coverImage"`
	Tags        []string  `json:"tags" form:"tags"`
}

type MediaPage struct {
	Data []MediaItem `json:"data"`
	Meta struct {
		TotalItems  int64 `json:"totalItems"`
		TotalPages  int   `json:"totalPages"`
		CurrentPage int   `json:"currentPage"`
	} `json:"meta"`
}

// ===== PERSONNEL =====

type PersonnelRequest struct {
	Name           string        `json:"name" form:"name" validate:"required,max=255"`
	Position       string        `json:"position" form:"position" validate:"required,max=255"`
	Education      string        `json:"education" form:"education" validate:"max=255"`
	Workplace      string        `json:"workplace" form:"workplace" validate:"max=255"`
	Experience     string        `json:"experience" form:"experience"`
	Phone          string        `json:"phone" form:"phone" validate:"max=50"`
	Email          string        `json:"email" form:"email" validate:"omitempty,email"`
	Resume         string        `json:"resume" form:"resume"`
	AdditionalInfo *string       `json:"additionalInfo" form:"additionalInfo"`
	Type           PersonnelType `json:"type" form:"type" validate:"omitempty,personnel_type"`
}

type PersonnelListParams struct {
	Page     int
	Limit    int
	Type     PersonnelType
	Name     string
	Position string
	Search   string
}

type PersonnelPage struct {
	Data []Personnel `json:"data"`
	Meta PageMeta    `json:"meta"`
}

// ===== TICKETS =====

type TicketCreateRequest struct {
	Subject string `json:"subject" form:"subject" validate:"required,min=1,max=255"`
	Message string `json:"message" form:"message" validate:"required,min=1"`
}

type TicketReplyRequest struct {
	Message string `json:"message" form:"message" validate:"required,min=1"`
}

type TicketStatusRequest struct {
	Status TicketStatus `json:"status" validate:"required,ticket_status"`
}

type TicketListParams struct {
	Page   int
	Limit  int
	Status TicketStatus
	UserID *uint
}

type TicketPage struct {
	Data []Ticket `json:"data"`
	Meta PageMeta `json:"meta"`
}

// Attachment is an uploaded file already persisted by the storage layer
type Attachment struct {
	URL  string
	Name string
}

// ===== LANDING SETTINGS =====

type LandingSettingRequest struct {
	Key         string `json:"key" form:"key" validate:"required,setting_key,max=100"`
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Description string `json:"description" form:"description"`
}

type LandingSettingUpdateRequest struct {
	Key         *string `json:"key" form:"key" validate:"omitempty,setting_key,max=100"`
	Title       *string `json:"title" form:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" form:"description"`
}

// ===== COMMON =====

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TotalPages rounds total/limit up, zero when limit is not positive
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
