package models

import (
	"time"

	"gorm.io/datatypes"
)

type ResponseStatus string

const (
	ResponseStarted   ResponseStatus = "started"
	ResponseCompleted ResponseStatus = "completed"
	// ResponseAbandoned is accepted as a stored value; nothing moves a response into it
	ResponseAbandoned ResponseStatus = "abandoned"
)

type SupplierType string

const (
	SupplierManufacturer           SupplierType = "manufacturer"
	SupplierOfficialRepresentative SupplierType = "official_representative"
	SupplierDistributor            SupplierType = "distributor"
	SupplierTradingCompany         SupplierType = "trading_company"
	SupplierImporter               SupplierType = "importer"
)

type ResponseMetadata struct {
	Browser        string `json:"browser,omitempty"`
	Device         string `json:"device,omitempty"`
	Location       string `json:"location,omitempty"`
	Referrer       string `json:"referrer,omitempty"`
	CompletionTime int    `json:"completionTime,omitempty"`
	PageViews      int    `json:"pageViews,omitempty"`
}

type ResponseScores struct {
	Total      float64            `json:"total"`
	BySection  map[string]float64 `json:"bySection,omitempty"`
	ByCategory map[string]float64 `json:"byCategory,omitempty"`
}

type PollResponse struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	PollID uint  `json:"pollId" gorm:"not null;index"`
	Poll   *Poll `json:"poll,omitempty" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`

	UserID    *uint   `json:"userId" gorm:"index"`
	User      *User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	SessionID *string `json:"sessionId" gorm:"size:255;index"`
	IPAddress *string `json:"ipAddress" gorm:"size:64"`
	UserAgent *string `json:"userAgent" gorm:"type:text"`

	SupplierType      *SupplierType `json:"supplierType" gorm:"size:40"`
	RespondentName    *string       `json:"respondentName" gorm:"size:255"`
	RespondentEmail   *string       `json:"respondentEmail" gorm:"size:255"`
	RespondentPhone   *string       `json:"respondentPhone" gorm:"size:50"`
	RespondentCompany *string       `json:"respondentCompany" gorm:"size:255"`

	Status  ResponseStatus `json:"status" gorm:"not null;default:started;size:20;index"`
	Answers []PollAnswer   `json:"answers,omitempty" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`

	Metadata datatypes.JSONType[ResponseMetadata] `json:"metadata" gorm:"type:jsonb"`
	Feedback *string                              `json:"feedback" gorm:"type:text"`

	StartedAt          time.Time       `json:"startedAt" gorm:"autoCreateTime"`
	CompletedAt        *time.Time      `json:"completedAt" gorm:"index"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	ProgressPercentage int             `json:"progressPercentage" gorm:"not null;default:0"`
	Scores             *ResponseScores `json:"scores,omitempty" gorm:"type:jsonb;serializer:json"`
}

func (PollResponse) TableName() string {
	return "poll_responses"
}

// RespondentLabel is the name shown in exports: respondent name, then account email, then Anonymous
func (r *PollResponse) RespondentLabel() string {
	if r.RespondentName != nil && *r.RespondentName != "" {
		return *r.RespondentName
	}
	if r.User != nil && r.User.Email != "" {
		return r.User.Email
	}
	return "Anonymous"
}
