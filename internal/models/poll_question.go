package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionRating         QuestionType = "rating"
	QuestionScale          QuestionType = "scale"
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionLikert         QuestionType = "likert"
	QuestionMatrix         QuestionType = "matrix"
)

// ConfigKind selects the variant of a QuestionConfig
type ConfigKind string

const (
	ConfigChoice ConfigKind = "choice"
	ConfigRating ConfigKind = "rating"
	ConfigMatrix ConfigKind = "matrix"
	ConfigText   ConfigKind = "text"
)

// ConfigKind maps a question type to the configuration variant it carries
func (t QuestionType) ConfigKind() ConfigKind {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionDropdown, QuestionYesNo:
		return ConfigChoice
	case QuestionRating, QuestionScale, QuestionLikert:
		return ConfigRating
	case QuestionMatrix:
		return ConfigMatrix
	default:
		return ConfigText
	}
}

func (t QuestionType) IsChoice() bool { return t.ConfigKind() == ConfigChoice }
func (t QuestionType) IsRating() bool { return t.ConfigKind() == ConfigRating }
func (t QuestionType) IsMatrix() bool { return t == QuestionMatrix }
func (t QuestionType) IsText() bool   { return t == QuestionText || t == QuestionTextarea }

type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Order *int   `json:"order,omitempty"`
}

type MatrixItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ChoiceConfig struct {
	Options    []QuestionOption `json:"options"`
	AllowOther bool             `json:"allowOther,omitempty"`
}

type RatingConfig struct {
	Min    *int              `json:"min,omitempty"`
	Max    *int              `json:"max,omitempty"`
	Step   *int              `json:"step,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Bounds returns the configured range, defaulting to 1..5
func (r *RatingConfig) Bounds() (int, int) {
	lo, hi := 1, 5
	if r == nil {
		return lo, hi
	}
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	return lo, hi
}

type MatrixConfig struct {
	Rows              []MatrixItem     `json:"rows"`
	Columns           []MatrixItem     `json:"columns"`
	Options           []QuestionOption `json:"options,omitempty"`
	MultipleResponses bool             `json:"multipleResponses,omitempty"`
}

type TextConfig struct {
	Placeholder string `json:"placeholder,omitempty"`
}

// QuestionConfig is a tagged union: exactly the variant named by Kind is set
type QuestionConfig struct {
	Kind   ConfigKind    `json:"kind"`
	Choice *ChoiceConfig `json:"choice,omitempty"`
	Rating *RatingConfig `json:"rating,omitempty"`
	Matrix *MatrixConfig `json:"matrix,omitempty"`
	Text   *TextConfig   `json:"text,omitempty"`
}

type ValidationRules struct {
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	MinLength     *int     `json:"minLength,omitempty"`
	MaxLength     *int     `json:"maxLength,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
	CustomMessage string   `json:"customMessage,omitempty"`
}

type ConditionOperator string

const (
	ConditionEquals      ConditionOperator = "equals"
	ConditionNotEquals   ConditionOperator = "not_equals"
	ConditionContains    ConditionOperator = "contains"
	ConditionGreaterThan ConditionOperator = "greater_than"
	ConditionLessThan    ConditionOperator = "less_than"
)

type Condition struct {
	QuestionID uint              `json:"questionId"`
	Operator   ConditionOperator `json:"operator"`
	Value      any               `json:"value"`
}

type ConditionalLogic struct {
	ShowIf []Condition `json:"showIf,omitempty"`
}

type PollQuestion struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	PollID      uint         `json:"pollId" gorm:"not null;index"`
	Question    string       `json:"question" gorm:"type:text;not null"`
	Description *string      `json:"description" gorm:"type:text"`
	Type        QuestionType `json:"type" gorm:"not null;default:single_choice;size:30"`
	Required    bool         `json:"required" gorm:"not null"`
	Order       int          `json:"order" gorm:"column:order;not null;default:0"`

	Config           datatypes.JSONType[QuestionConfig] `json:"config" gorm:"type:jsonb"`
	ValidationRules  *ValidationRules                   `json:"validationRules,omitempty" gorm:"type:jsonb;serializer:json"`
	ConditionalLogic *ConditionalLogic                  `json:"conditionalLogic,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PollQuestion) TableName() string {
	return "poll_questions"
}

// Options returns the choice options, or the cell options of a matrix question
func (q *PollQuestion) Options() []QuestionOption {
	cfg := q.Config.Data()
	switch {
	case cfg.Choice != nil:
		return cfg.Choice.Options
	case cfg.Matrix != nil:
		return cfg.Matrix.Options
	}
	return nil
}

func (q *PollQuestion) AllowOther() bool {
	cfg := q.Config.Data()
	return cfg.Choice != nil && cfg.Choice.AllowOther
}

func (q *PollQuestion) RatingConfig() *RatingConfig {
	return q.Config.Data().Rating
}

func (q *PollQuestion) MatrixConfig() *MatrixConfig {
	return q.Config.Data().Matrix
}

func (q *PollQuestion) Placeholder() string {
	if t := q.Config.Data().Text; t != nil {
		return t.Placeholder
	}
	return ""
}

// HasOption reports whether value is one of the question's option values
func (q *PollQuestion) HasOption(value string) bool {
	for _, opt := range q.Options() {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// DefaultYesNoOptions are used when a yes/no question is created without options
var DefaultYesNoOptions = []QuestionOption{
	{Value: "yes", Label: "بله"},
	{Value: "no", Label: "خیر"},
}

// NewQuestionConfig keeps only the configuration that belongs to the question type
func NewQuestionConfig(t QuestionType, req PollQuestionRequest) QuestionConfig {
	cfg := QuestionConfig{Kind: t.ConfigKind()}
	switch cfg.Kind {
	case ConfigChoice:
		options := req.Options
		if len(options) == 0 && t == QuestionYesNo {
			options = DefaultYesNoOptions
		}
		cfg.Choice = &ChoiceConfig{Options: options, AllowOther: req.AllowOther}
	case ConfigRating:
		cfg.Rating = req.RatingConfig
		if cfg.Rating == nil {
			cfg.Rating = &RatingConfig{}
		}
	case ConfigMatrix:
		cfg.Matrix = req.MatrixConfig
		if cfg.Matrix == nil {
			cfg.Matrix = &MatrixConfig{}
		}
		if len(cfg.Matrix.Options) == 0 && len(req.Options) > 0 {
			cfg.Matrix.Options = req.Options
		}
	default:
		cfg.Text = &TextConfig{Placeholder: req.Placeholder}
	}
	return cfg
}

// Validate reports a mismatch between the union variant and the question type
func (c QuestionConfig) Validate(t QuestionType) error {
	want := t.ConfigKind()
	if c.Kind != want {
		return fmt.Errorf("config kind %q does not match question type %q", c.Kind, t)
	}
	set := 0
	for _, present := range []bool{c.Choice != nil, c.Rating != nil, c.Matrix != nil, c.Text != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("config must carry exactly one variant, got %d", set)
	}
	switch want {
	case ConfigChoice:
		if c.Choice == nil {
			return fmt.Errorf("choice config missing")
		}
	case ConfigRating:
		if c.Rating == nil {
			return fmt.Errorf("rating config missing")
		}
	case ConfigMatrix:
		if c.Matrix == nil {
			return fmt.Errorf("matrix config missing")
		}
	case ConfigText:
		if c.Text == nil {
			return fmt.Errorf("text config missing")
		}
	}
	return nil
}

// CloneQuestion copies the question content for another poll, without ids and timestamps
func (q *PollQuestion) CloneQuestion() PollQuestion {
	return PollQuestion{
		Question:         q.Question,
		Description:      q.Description,
		Type:             q.Type,
		Required:         q.Required,
		Order:            q.Order,
		Config:           datatypes.NewJSONType(q.Config.Data()),
		ValidationRules:  q.ValidationRules,
		ConditionalLogic: q.ConditionalLogic,
	}
}
