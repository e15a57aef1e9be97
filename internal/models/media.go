package models

import (
	"time"

	"github.com/lib/pq"
)

type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
	MediaGallery MediaType = "gallery"
	MediaIframe  MediaType = "iframe"
	MediaURL     MediaType = "url"
)

type Media struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Filename     string         `json:"filename" gorm:"size:255"`
	OriginalName string         `json:"originalName" gorm:"size:255"`
	Path         string         `json:"path" gorm:"size:500"`
	URL          string         `json:"url" gorm:"size:1000;not null"`
	MimeType     string         `json:"mimeType" gorm:"size:100"`
	Size         int64          `json:"size"`
	Type         MediaType      `json:"type" gorm:"not null;size:20;index"`
	Title        string         `json:"title" gorm:"size:255"`
	Description  *string        `json:"description" gorm:"type:text"`
	CoverImage   *string        `json:"coverImage" gorm:"size:1000"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	GalleryURLs  pq.StringArray `json:"galleryUrls" gorm:"type:text[]"`
	// Backend that holds the file, empty for external links
	Storage   string    `json:"-" gorm:"size:20"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Media) TableName() string {
	return "media"
}

// MediaItem is the listing projection consumed by the website gallery
type MediaItem struct {
	ID          uint      `json:"id"`
	Type        MediaType `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"coverImage"`
	URL         string    `json:"url"`
	GalleryURLs []string  `json:"galleryUrls,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Tags        []string  `json:"tags"`
}

// Item projects the record; uploaded images and videos are listed as galleries
func (m *Media) Item() MediaItem {
	itemType := m.Type
	if itemType == MediaImage || itemType == MediaVideo {
		itemType = MediaGallery
	}
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return MediaItem{
		ID:          m.ID,
		Type:        itemType,
		Title:       m.Title,
		Description: m.Description,
		CoverImage:  m.CoverImage,
		URL:         m.URL,
		GalleryURLs: m.GalleryURLs,
		CreatedAt:   m.CreatedAt,
		Tags:        tags,
	}
}
