package models

import (
	"encoding/json"
	"time"
)

// ===== POLL AUTHORING =====

type PollQuestionRequest struct {
	Question         string            `json:"question" validate:"required,min=1"`
	Description      *string           `json:"description"`
	Type             QuestionType      `json:"type" validate:"omitempty,question_type"`
	Required         *bool             `json:"required"`
	Order            *int              `json:"order" validate:"omitempty,min=0"`
	Options          []QuestionOption  `json:"options" validate:"omitempty,dive"`
	ValidationRules  *ValidationRules  `json:"validationRules"`
	RatingConfig     *RatingConfig     `json:"ratingConfig"`
	MatrixConfig     *MatrixConfig     `json:"matrixConfig"`
	AllowOther       bool              `json:"allowOther"`
	Placeholder      string            `json:"placeholder"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic"`
}

type PollCreateRequest struct {
	Title                    string                `json:"title" validate:"required,min=1,max=255"`
	Description              *string               `json:"description"`
	Type                     PollType              `json:"type" validate:"omitempty,poll_type"`
	Status                   PollStatus            `json:"status" validate:"omitempty,poll_status"`
	StartDate                *time.Time            `json:"startDate"`
	EndDate                  *time.Time            `json:"endDate"`
	RequiresAuth             *bool                 `json:"requiresAuth"`
	AllowAnonymous           *bool                 `json:"allowAnonymous"`
	AllowMultipleSubmissions *bool                 `json:"allowMultipleSubmissions"`
	ShowResults              *bool                 `json:"showResults"`
	RandomizeQuestions       *bool                 `json:"randomizeQuestions"`
	Metadata                 map[string]any        `json:"metadata"`
	Questions                []PollQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// PollUpdateRequest is a partial update; a non-nil Questions replaces every existing question
type PollUpdateRequest struct {
	Title                    *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Description              *string               `json:"description"`
	Type                     *PollType             `json:"type" validate:"omitempty,poll_type"`
	Status                   *PollStatus           `json:"status" validate:"omitempty,poll_status"`
	StartDate                *time.Time            `json:"startDate"`
	EndDate                  *time.Time            `json:"endDate"`
	RequiresAuth             *bool                 `json:"requiresAuth"`
	AllowAnonymous           *bool                 `json:"allowAnonymous"`
	AllowMultipleSubmissions *bool                 `json:"allowMultipleSubmissions"`
	ShowResults              *bool                 `json:"showResults"`
	RandomizeQuestions       *bool                 `json:"randomizeQuestions"`
	Metadata                 map[string]any        `json:"metadata"`
	Questions                []PollQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type PollStatusRequest struct {
	Status PollStatus `json:"status" validate:"required,poll_status"`
}

type PollFilter struct {
	Status    PollStatus
	Type      PollType
	CreatedBy *uint
}

// ===== RESPONSES =====

type AnswerInput struct {
	QuestionID      uint              `json:"questionId" validate:"required"`
	Value           json.RawMessage   `json:"value"`
	TextValue       *string           `json:"textValue"`
	SelectedOptions []string          `json:"selectedOptions"`
	RatingValue     *int              `json:"ratingValue"`
	MatrixValue     map[string]string `json:"matrixValue"`
	OtherValue      *string           `json:"otherValue"`
}

type SubmitResponseRequest struct {
	Answers           []AnswerInput     `json:"answers" validate:"required,dive"`
	SupplierType      *SupplierType     `json:"supplierType" validate:"omitempty,supplier_type"`
	RespondentName    *string           `json:"respondentName" validate:"omitempty,max=255"`
	RespondentEmail   *string           `json:"respondentEmail" validate:"omitempty,email"`
	RespondentPhone   *string           `json:"respondentPhone" validate:"omitempty,max=50"`
	RespondentCompany *string           `json:"respondentCompany" validate:"omitempty,max=255"`
	Feedback          *string           `json:"feedback"`
	Metadata          *ResponseMetadata `json:"metadata"`
	SessionID         *string           `json:"sessionId"`
}

// SessionInfo identifies an anonymous respondent
type SessionInfo struct {
	SessionID string
	IPAddress string
	UserAgent string
}

// ===== SUPPLIER POLLS =====

type SupplierGroup struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}

type TableQuestion struct {
	ID       string `json:"id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Required bool   `json:"required"`
}

type QuestionColumn struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}

type QuestionColumns struct {
	Importance         []QuestionColumn `json:"importance" validate:"dive"`
	ImportanceOfTopic  []QuestionColumn `json:"importanceOfTopic" validate:"dive"`
	CompanyPerformance []QuestionColumn `json:"companyPerformance" validate:"dive"`
	CompanyStatus      []QuestionColumn `json:"companyStatus" validate:"dive"`
}

type SupplierPollRequest struct {
	Title           string          `json:"title" validate:"required,min=1,max=255"`
	Description     *string         `json:"description"`
	SupplierGroups  []SupplierGroup `json:"supplierGroups" validate:"required,min=1,dive"`
	TableQuestions  []TableQuestion `json:"tableQuestions" validate:"required,min=1,dive"`
	QuestionColumns QuestionColumns `json:"questionColumns"`
}

type SupplierRowAnswer struct {
	QuestionID         string `json:"questionId" validate:"required"`
	Importance         string `json:"importance"`
	ImportanceOfTopic  string `json:"importanceOfTopic"`
	CompanyPerformance string `json:"companyPerformance"`
	CompanyStatus      string `json:"companyStatus"`
}

type SupplierResponseRequest struct {
	SupplierType      SupplierType        `json:"supplierType" validate:"required,supplier_type"`
	RespondentName    *string             `json:"respondentName"`
	RespondentEmail   *string             `json:"respondentEmail" validate:"omitempty,email"`
	RespondentPhone   *string             `json:"respondentPhone"`
	RespondentCompany *string             `json:"respondentCompany"`
	Responses         []SupplierRowAnswer `json:"responses" validate:"required,dive"`
	Feedback          *string             `json:"feedback"`
}

// ===== ADMINISTRATION =====

type BulkAction string

const (
	BulkDelete   BulkAction = "delete"
	BulkActivate BulkAction = "activate"
	BulkClose    BulkAction = "close"
)

type BulkActionRequest struct {
	Action  BulkAction `json:"action" validate:"required,oneof=delete activate close"`
	PollIDs []uint     `json:"pollIds" validate:"required,min=1"`
}

type BulkActionResult struct {
	PollID  uint   `json:"pollId"`
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PollDashboard struct {
	Total          int64  `json:"total"`
	Active         int64  `json:"active"`
	Draft          int64  `json:"draft"`
	Closed         int64  `json:"closed"`
	TotalResponses int64  `json:"totalResponses"`
	TotalViews     int64  `json:"totalViews"`
	RecentPolls    []Poll `json:"recentPolls"`
}

// ===== STATISTICS =====

type PollStatistics struct {
	PollID         uint                 `json:"pollId"`
	Title          string               `json:"title"`
	TotalResponses int                  `json:"totalResponses"`
	ViewCount      int                  `json:"viewCount"`
	ResponseRate   float64              `json:"responseRate"`
	Questions      []QuestionStatistics `json:"questions"`
}

// QuestionStatistics.Answers holds map[string]int for choice questions, RatingStatistics,
// TextStatistics, or map[string]map[string]int for matrix questions
type QuestionStatistics struct {
	ID           uint         `json:"id"`
	Question     string       `json:"question"`
	Type         QuestionType `json:"type"`
	TotalAnswers int          `json:"totalAnswers"`
	Answers      any          `json:"answers"`
}

type RatingStatistics struct {
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type TextStatistics struct {
	Responses []string `json:"responses"`
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// PollExport carries either the raw responses or the tabular rows, header first
type PollExport struct {
	Format    ExportFormat   `json:"format"`
	Responses []PollResponse `json:"responses,omitempty"`
	Rows      [][]string     `json:"rows,omitempty"`
}

// ===== SIMPLE POLLS =====

type SimplePollRequest struct {
	Question          string             `json:"question"`
	Qustion           string             `json:"qustion"`
	Answers           []SimplePollAnswer `json:"answers" validate:"required,min=1"`
	RespondentName    *string            `json:"respondentName"`
	RespondentEmail   *string            `json:"respondentEmail" validate:"omitempty,email"`
	RespondentPhone   *string            `json:"respondentPhone"`
	RespondentCompany *string            `json:"respondentCompany"`
	SupplierType      *string            `json:"supplierType"`
	SessionID         *string            `json:"sessionId"`
}

// QuestionText resolves the question, accepting the legacy misspelled key
func (r *SimplePollRequest) QuestionText() string {
	if r.Question != "" {
		return r.Question
	}
	return r.Qustion
}

type SimpleQuestionStats struct {
	QuestionTitle        string         `json:"questionTitle"`
	Importance           map[string]int `json:"importance"`
	Performance          map[string]int `json:"performance"`
	CompetitorComparison map[string]int `json:"competitorComparison"`
	CompanyStatus        map[string]int `json:"companyStatus"`
}

type SimplePollStatistics struct {
	TotalResponses int                             `json:"totalResponses"`
	QuestionStats  map[string]*SimpleQuestionStats `json:"questionStats"`
}
