package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PostSection string

const (
	SectionOccasions     PostSection = "مناسبت ها"
	SectionAnnouncements PostSection = "اطلاعیه ها"
	SectionNews          PostSection = "اخبار ها"
	SectionAchievements  PostSection = "افتخارات"
	SectionSlider        PostSection = "اسلایدر"
	SectionHR            PostSection = "منابع انسانی"
)

var PostSections = []PostSection{
	SectionOccasions, SectionAnnouncements, SectionNews, SectionAchievements, SectionSlider, SectionHR,
}

type Post struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:255;index"`
	Description string         `json:"description" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Section     PostSection    `json:"section" gorm:"not null;size:50;index"`
	Content     string         `json:"content" gorm:"type:text"`
	LeadPicture *string        `json:"leadPicture" gorm:"size:500"`

	AuthorID *uint `json:"authorId" gorm:"index"`
	Author   *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`

	IsActive      bool    `json:"isActive" gorm:"not null"`
	AverageRating float64 `json:"averageRating" gorm:"not null;default:0"`
	TotalRatings  int     `json:"totalRatings" gorm:"not null;default:0"`
	ReadingTime   int     `json:"readingTime" gorm:"not null;default:3"`
	Views         int     `json:"views" gorm:"not null;default:0"`

	CategoryID *uint     `json:"categoryId" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`

	Gallery     datatypes.JSONSlice[string] `json:"gallery" gorm:"type:jsonb"`
	Comments    []Comment                   `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Attachments []PostAttachment            `json:"attachments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

type CommentAuthor struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type Comment struct {
	ID        string                            `json:"id" gorm:"primaryKey;type:uuid"`
	PostID    uint                              `json:"postId" gorm:"not null;index"`
	Content   string                            `json:"content" gorm:"type:text;not null"`
	Author    datatypes.JSONType[CommentAuthor] `json:"author" gorm:"type:jsonb"`
	Rating    int                               `json:"rating" gorm:"not null"`
	CreatedAt time.Time                         `json:"createdAt"`
	UpdatedAt time.Time                         `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type PostAttachment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255"`
	URL       string    `json:"url" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostAttachment) TableName() string {
	return "post_attachments"
}
