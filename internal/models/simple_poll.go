package models

import (
	"time"

	"gorm.io/datatypes"
)

// SimplePollAnswer is one evaluated row of a simple supplier poll
type SimplePollAnswer struct {
	QuestionID           string `json:"questionId"`
	QuestionTitle        string `json:"questionTitle"`
	Importance           string `json:"importance,omitempty"`
	Performance          string `json:"performance,omitempty"`
	CompetitorComparison string `json:"competitorComparison,omitempty"`
	CompanyStatus        string `json:"companyStatus,omitempty"`
}

type SimplePoll struct {
	ID       uint                                  `json:"id" gorm:"primaryKey"`
	Question string                                `json:"question" gorm:"type:text;not null"`
	Answers  datatypes.JSONSlice[SimplePollAnswer] `json:"answers" gorm:"type:jsonb"`

	RespondentName    *string `json:"respondentName" gorm:"size:255"`
	RespondentEmail   *string `json:"respondentEmail" gorm:"size:255"`
	RespondentPhone   *string `json:"respondentPhone" gorm:"size:50"`
	RespondentCompany *string `json:"respondentCompany" gorm:"size:255"`
	SupplierType      *string `json:"supplierType" gorm:"size:40"`
	SessionID         *string `json:"sessionId" gorm:"size:255"`
	IPAddress         *string `json:"ipAddress" gorm:"size:64"`
	UserAgent         *string `json:"userAgent" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SimplePoll) TableName() string {
	return "simple_polls"
}
