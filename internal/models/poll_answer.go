package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// AnswerKind selects the variant of an AnswerValue
type AnswerKind string

const (
	AnswerText    AnswerKind = "text"
	AnswerOptions AnswerKind = "options"
	AnswerRating  AnswerKind = "rating"
	AnswerMatrix  AnswerKind = "matrix"
	AnswerRaw     AnswerKind = "value"
)

// AnswerValue is a tagged union over the answer shapes a question can accept.
// Other carries the free text entered next to an "other" choice.
type AnswerValue struct {
	Kind    AnswerKind        `json:"kind"`
	Text    *string           `json:"text,omitempty"`
	Options []string          `json:"options,omitempty"`
	Rating  *int              `json:"rating,omitempty"`
	Matrix  map[string]string `json:"matrix,omitempty"`
	Raw     json.RawMessage   `json:"value,omitempty"`
	Other   *string           `json:"other,omitempty"`
}

type PollAnswer struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	ResponseID uint          `json:"responseId" gorm:"not null;index"`
	QuestionID uint          `json:"questionId" gorm:"not null;index"`
	Question   *PollQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`

	Value           datatypes.JSON              `json:"value" gorm:"type:jsonb"`
	TextValue       *string                     `json:"textValue" gorm:"type:text"`
	SelectedOptions datatypes.JSONSlice[string] `json:"selectedOptions" gorm:"type:jsonb"`
	RatingValue     *int                        `json:"ratingValue"`
	MatrixValue     map[string]string           `json:"matrixValue" gorm:"type:jsonb;serializer:json"`
	OtherValue      *string                     `json:"otherValue" gorm:"type:text"`

	AnsweredAt time.Time `json:"answeredAt" gorm:"autoCreateTime"`
}

func (PollAnswer) TableName() string {
	return "poll_answers"
}

// NewPollAnswer fills only the columns that belong to the value's variant
func NewPollAnswer(questionID uint, v AnswerValue) PollAnswer {
	a := PollAnswer{QuestionID: questionID, OtherValue: v.Other}
	switch v.Kind {
	case AnswerText:
		a.TextValue = v.Text
	case AnswerOptions:
		a.SelectedOptions = datatypes.JSONSlice[string](v.Options)
	case AnswerRating:
		a.RatingValue = v.Rating
	case AnswerMatrix:
		a.MatrixValue = v.Matrix
	}
	if len(v.Raw) > 0 {
		a.Value = datatypes.JSON(v.Raw)
	}
	return a
}

// AnswerValue rebuilds the union from the stored columns
func (a *PollAnswer) AnswerValue() AnswerValue {
	v := AnswerValue{Other: a.OtherValue, Raw: json.RawMessage(a.Value)}
	switch {
	case a.TextValue != nil:
		v.Kind, v.Text = AnswerText, a.TextValue
	case len(a.SelectedOptions) > 0:
		v.Kind, v.Options = AnswerOptions, []string(a.SelectedOptions)
	case a.RatingValue != nil:
		v.Kind, v.Rating = AnswerRating, a.RatingValue
	case len(a.MatrixValue) > 0:
		v.Kind, v.Matrix = AnswerMatrix, a.MatrixValue
	default:
		v.Kind = AnswerRaw
	}
	return v
}

// ScalarValue renders the generic value for tallies; falsy JSON values report ok=false
func (a *PollAnswer) ScalarValue() (string, bool) {
	if len(a.Value) == 0 {
		return "", false
	}
	var decoded any
	if err := json.Unmarshal(a.Value, &decoded); err != nil {
		return "", false
	}
	switch v := decoded.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "true", v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v != 0
	default:
		return string(a.Value), true
	}
}

// ExportCell stringifies an answer for tabular exports: text, joined options, rating, matrix, value
func (a *PollAnswer) ExportCell() string {
	switch {
	case a.TextValue != nil && *a.TextValue != "":
		return *a.TextValue
	case len(a.SelectedOptions) > 0:
		return strings.Join(a.SelectedOptions, ", ")
	case a.RatingValue != nil:
		return strconv.Itoa(*a.RatingValue)
	case len(a.MatrixValue) > 0:
		b, err := json.Marshal(a.MatrixValue)
		if err == nil {
			return string(b)
		}
	}
	if s, ok := a.ScalarValue(); ok {
		return s
	}
	return ""
}

// IsEmpty reports whether the answer carries no value at all
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case AnswerText:
		return v.Text == nil || strings.TrimSpace(*v.Text) == ""
	case AnswerOptions:
		return len(v.Options) == 0 && (v.Other == nil || *v.Other == "")
	case AnswerRating:
		return v.Rating == nil
	case AnswerMatrix:
		return len(v.Matrix) == 0
	default:
		return len(v.Raw) == 0 || string(v.Raw) == "null"
	}
}

// AnswerFromInput selects the union variant by question type, falling back to the
// generic value when the typed field was not sent
func AnswerFromInput(t QuestionType, in AnswerInput) AnswerValue {
	v := AnswerValue{Other: in.OtherValue}
	if len(in.Value) > 0 && string(in.Value) != "null" {
		v.Raw = in.Value
	}

	switch t.ConfigKind() {
	case ConfigChoice:
		v.Kind = AnswerOptions
		v.Options = in.SelectedOptions
		if len(v.Options) == 0 && v.Raw != nil {
			v.Options = rawOptions(t, v.Raw)
		}
	case ConfigRating:
		v.Kind = AnswerRating
		v.Rating = in.RatingValue
		if v.Rating == nil && v.Raw != nil {
			var n float64
			if err := json.Unmarshal(v.Raw, &n); err == nil {
				r := int(n)
				v.Rating = &r
			}
		}
	case ConfigMatrix:
		v.Kind = AnswerMatrix
		v.Matrix = in.MatrixValue
		if len(v.Matrix) == 0 && v.Raw != nil {
			var m map[string]string
			if err := json.Unmarshal(v.Raw, &m); err == nil {
				v.Matrix = m
			}
		}
	default:
		v.Kind = AnswerText
		v.Text = in.TextValue
		if v.Text == nil && v.Raw != nil {
			var s string
			if err := json.Unmarshal(v.Raw, &s); err == nil {
				v.Text = &s
			}
		}
	}
	return v
}

func rawOptions(t QuestionType, raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var b bool
	if t == QuestionYesNo && json.Unmarshal(raw, &b) == nil {
		if b {
			return []string{"yes"}
		}
		return []string{"no"}
	}
	return nil
}
