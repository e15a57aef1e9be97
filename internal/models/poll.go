package models

import (
	"time"

	"gorm.io/datatypes"
)

type PollStatus string

const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

type PollType string

const (
	PollTypeSurvey       PollType = "survey"
	PollTypeSatisfaction PollType = "satisfaction"
	PollTypeFeedback     PollType = "feedback"
	PollTypeEvaluation   PollType = "evaluation"
)

// SupplierPollMarker is the metadata pollType of synthesized supplier satisfaction polls
const SupplierPollMarker = "supplier_satisfaction"

type Poll struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255"`
	Description *string    `json:"description" gorm:"type:text"`
	Type        PollType   `json:"type" gorm:"not null;default:survey;size:20;index"`
	Status      PollStatus `json:"status" gorm:"not null;default:draft;size:20;index"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`

	// Flags that default to true are set by the service, gorm would overwrite an explicit false
	RequiresAuth             bool `json:"requiresAuth" gorm:"not null"`
	AllowAnonymous           bool `json:"allowAnonymous" gorm:"not null"`
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions" gorm:"not null"`
	ShowResults              bool `json:"showResults" gorm:"not null"`
	RandomizeQuestions       bool `json:"randomizeQuestions" gorm:"not null"`

	Metadata datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`

	CreatedByID *uint `json:"createdById" gorm:"index"`
	CreatedBy   *User `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`

	Questions []PollQuestion `json:"questions,omitempty" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`

	// Display aggregates, incremented atomically by the repository
	ResponseCount int `json:"responseCount" gorm:"not null;default:0"`
	ViewCount     int `json:"viewCount" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Poll) TableName() string {
	return "polls"
}

// OwnerID returns the creator id or zero for system polls
func (p *Poll) OwnerID() uint {
	if p.CreatedByID == nil {
		return 0
	}
	return *p.CreatedByID
}

// HasStarted is true without a start date
func (p *Poll) HasStarted(now time.Time) bool {
	return p.StartDate == nil || !now.Before(*p.StartDate)
}

// HasEnded is false without an end date; the end instant itself is still open
func (p *Poll) HasEnded(now time.Time) bool {
	return p.EndDate != nil && now.After(*p.EndDate)
}

// WithinWindow reports whether now falls inside the optional start/end dates
func (p *Poll) WithinWindow(now time.Time) bool {
	return p.HasStarted(now) && !p.HasEnded(now)
}

func (p *Poll) IsSupplierPoll() bool {
	if p.Metadata == nil {
		return false
	}
	kind, _ := p.Metadata["pollType"].(string)
	return kind == SupplierPollMarker
}
