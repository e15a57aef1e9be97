package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonnelType string

const (
	PersonnelManager   PersonnelType = "manager"
	PersonnelAssistant PersonnelType = "assistant"
	PersonnelManagers  PersonnelType = "managers"
)

type Personnel struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid"`
	Name           string        `json:"name" gorm:"not null;size:255;index"`
	Position       string        `json:"position" gorm:"size:255"`
	Education      string        `json:"education" gorm:"size:255"`
	Workplace      string        `json:"workplace" gorm:"size:255"`
	Experience     string        `json:"experience" gorm:"type:text"`
	Phone          string        `json:"phone" gorm:"size:50"`
	Email          string        `json:"email" gorm:"size:255"`
	Resume         string        `json:"resume" gorm:"type:text"`
	AdditionalInfo *string       `json:"additionalInfo" gorm:"type:text"`
	Image          *string       `json:"image" gorm:"size:500"`
	Type           PersonnelType `json:"type" gorm:"not null;default:assistant;size:20;index"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (Personnel) TableName() string {
	return "personnel"
}

func (p *Personnel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
