package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidatePollCreate validates poll creation business rules
func (bv *BusinessValidator) ValidatePollCreate(req *models.PollCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateWindow(req.StartDate, req.EndDate)...)
	for i := range req.Questions {
		errors = append(errors, bv.ValidateQuestion(&req.Questions[i], fmt.Sprintf("questions[%d]", i))...)
	}

	return errors
}

// ValidatePollUpdate validates a partial update against the stored poll
func (bv *BusinessValidator) ValidatePollUpdate(req *models.PollUpdateRequest, existing *models.Poll) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	start, end := existing.StartDate, existing.EndDate
	if req.StartDate != nil {
		start = req.StartDate
	}
	if req.EndDate != nil {
		end = req.EndDate
	}
	errors = append(errors, validateWindow(start, end)...)

	for i := range req.Questions {
		errors = append(errors, bv.ValidateQuestion(&req.Questions[i], fmt.Sprintf("questions[%d]", i))...)
	}

	return errors
}

// ValidateQuestion checks the type specific configuration of one question
func (bv *BusinessValidator) ValidateQuestion(q *models.PollQuestionRequest, field string) ValidationErrors {
	var errors ValidationErrors

	qType := q.Type
	if qType == "" {
		qType = models.QuestionSingleChoice
	}

	switch qType.ConfigKind() {
	case models.ConfigChoice:
		if qType != models.QuestionYesNo && len(q.Options) == 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: "choice questions need at least one option",
				Rule:    "question_config",
			})
		}
		errors = append(errors, validateOptions(q.Options, field+".options")...)

	case models.ConfigRating:
		if rc := q.RatingConfig; rc != nil {
			if rc.Min != nil && rc.Max != nil && *rc.Min >= *rc.Max {
				errors = append(errors, ValidationError{
					Field:   field + ".ratingConfig",
					Message: "min must be lower than max",
					Value:   rc,
					Rule:    "question_config",
				})
			}
			if rc.Step != nil && *rc.Step <= 0 {
				errors = append(errors, ValidationError{
					Field:   field + ".ratingConfig.step",
					Message: "must be positive",
					Value:   *rc.Step,
					Rule:    "question_config",
				})
			}
		}

	case models.ConfigMatrix:
		mc := q.MatrixConfig
		if mc == nil || len(mc.Rows) == 0 || len(mc.Columns) == 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".matrixConfig",
				Message: "matrix questions need rows and columns",
				Rule:    "question_config",
			})
		}
	}

	if rules := q.ValidationRules; rules != nil {
		if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
			errors = append(errors, ValidationError{
				Field:   field + ".validationRules",
				Message: "minLength cannot exceed maxLength",
				Rule:    "question_config",
			})
		}
		if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
			errors = append(errors, ValidationError{
				Field:   field + ".validationRules",
				Message: "min cannot exceed max",
				Rule:    "question_config",
			})
		}
		if rules.Pattern != "" {
			if _, err := regexp.Compile(rules.Pattern); err != nil {
				errors = append(errors, ValidationError{
					Field:   field + ".validationRules.pattern",
					Message: "is not a valid regular expression",
					Value:   rules.Pattern,
					Rule:    "question_config",
				})
			}
		}
	}

	if logic := q.ConditionalLogic; logic != nil {
		for i, cond := range logic.ShowIf {
			switch cond.Operator {
			case models.ConditionEquals, models.ConditionNotEquals, models.ConditionContains,
				models.ConditionGreaterThan, models.ConditionLessThan:
			default:
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("%s.conditionalLogic.showIf[%d].operator", field, i),
					Message: "unknown operator",
					Value:   cond.Operator,
					Rule:    "question_config",
				})
			}
		}
	}

	return errors
}

// ValidateAnswer checks one answer against the question it targets
func (bv *BusinessValidator) ValidateAnswer(q *models.PollQuestion, v models.AnswerValue, field string) ValidationErrors {
	var errors ValidationErrors

	if v.IsEmpty() {
		if q.Required {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "answer is required",
				Value:   q.ID,
				Rule:    "required_answer",
			})
		}
		return errors
	}

	rules := q.ValidationRules

	switch v.Kind {
	case models.AnswerOptions:
		if q.Type != models.QuestionMultipleChoice && len(v.Options) > 1 {
			errors = append(errors, ValidationError{
				Field:   field + ".selectedOptions",
				Message: "only one option may be selected",
				Value:   v.Options,
				Rule:    "answer_shape",
			})
		}
		for _, opt := range v.Options {
			if !q.HasOption(opt) && !q.AllowOther() {
				errors = append(errors, ValidationError{
					Field:   field + ".selectedOptions",
					Message: "unknown option",
					Value:   opt,
					Rule:    "answer_option",
				})
			}
		}
		if v.Other != nil && *v.Other != "" && !q.AllowOther() {
			errors = append(errors, ValidationError{
				Field:   field + ".otherValue",
				Message: "question does not accept other answers",
				Rule:    "answer_option",
			})
		}

	case models.AnswerRating:
		rating := *v.Rating
		if rc := q.RatingConfig(); rc != nil && (rc.Min != nil || rc.Max != nil) {
			lo, hi := rc.Bounds()
			if rating < lo || rating > hi {
				errors = append(errors, ValidationError{
					Field:   field + ".ratingValue",
					Message: fmt.Sprintf("must be between %d and %d", lo, hi),
					Value:   rating,
					Rule:    "answer_range",
				})
			}
		}
		if rules != nil {
			if (rules.Min != nil && float64(rating) < *rules.Min) || (rules.Max != nil && float64(rating) > *rules.Max) {
				errors = append(errors, ruleError(field+".ratingValue", rules, "is out of range", rating))
			}
		}

	case models.AnswerText:
		text := *v.Text
		if rules != nil {
			length := utf8.RuneCountInString(text)
			if rules.MinLength != nil && length < *rules.MinLength {
				errors = append(errors, ruleError(field+".textValue", rules, fmt.Sprintf("must be at least %d characters", *rules.MinLength), length))
			}
			if rules.MaxLength != nil && length > *rules.MaxLength {
				errors = append(errors, ruleError(field+".textValue", rules, fmt.Sprintf("must be at most %d characters", *rules.MaxLength), length))
			}
			if rules.Pattern != "" {
				if re, err := regexp.Compile(rules.Pattern); err == nil && !re.MatchString(text) {
					errors = append(errors, ruleError(field+".textValue", rules, "does not match the required format", text))
				}
			}
		}

	case models.AnswerMatrix:
		mc := q.MatrixConfig()
		if mc == nil {
			break
		}
		rows := itemSet(mc.Rows)
		cells := itemSet(mc.Columns)
		for _, opt := range mc.Options {
			cells[opt.Value] = true
		}
		for row, col := range v.Matrix {
			if len(rows) > 0 && !rows[row] {
				errors = append(errors, ValidationError{
					Field:   field + ".matrixValue",
					Message: "unknown row",
					Value:   row,
					Rule:    "answer_matrix",
				})
			}
			if len(cells) > 0 && !cells[col] {
				errors = append(errors, ValidationError{
					Field:   field + ".matrixValue." + row,
					Message: "unknown column",
					Value:   col,
					Rule:    "answer_matrix",
				})
			}
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("poll_status", oneOf(models.PollStatusDraft, models.PollStatusActive, models.PollStatusClosed))

	bv.validate.RegisterValidation("poll_type", oneOf(
		models.PollTypeSurvey, models.PollTypeSatisfaction, models.PollTypeFeedback, models.PollTypeEvaluation,
	))

	bv.validate.RegisterValidation("question_type", oneOf(
		models.QuestionSingleChoice, models.QuestionMultipleChoice, models.QuestionRating, models.QuestionScale,
		models.QuestionText, models.QuestionTextarea, models.QuestionYesNo, models.QuestionDropdown,
		models.QuestionLikert, models.QuestionMatrix,
	))

	bv.validate.RegisterValidation("supplier_type", oneOf(
		models.SupplierManufacturer, models.SupplierOfficialRepresentative, models.SupplierDistributor,
		models.SupplierTradingCompany, models.SupplierImporter,
	))

	bv.validate.RegisterValidation("post_section", oneOf(models.PostSections...))

	bv.validate.RegisterValidation("product_type", oneOf(models.ProductCement, models.ProductConcrete, models.ProductOther))

	bv.validate.RegisterValidation("media_type", oneOf(
		models.MediaImage, models.MediaVideo, models.MediaGallery, models.MediaIframe, models.MediaURL,
	))

	bv.validate.RegisterValidation("personnel_type", oneOf(
		models.PersonnelManager, models.PersonnelAssistant, models.PersonnelManagers,
	))

	bv.validate.RegisterValidation("ticket_status", oneOf(
		models.TicketOpen, models.TicketPending, models.TicketResolved, models.TicketClosed,
	))

	bv.validate.RegisterValidation("user_role", oneOf(models.RoleUser, models.RoleAdmin))

	// Category slugs and landing setting keys share the same alphabet
	bv.validate.RegisterValidation("slug", matchesKey)
	bv.validate.RegisterValidation("setting_key", matchesKey)
}

func oneOf[T ~string](values ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := T(fl.Field().String())
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func matchesKey(fl validator.FieldLevel) bool {
	return keyPattern.MatchString(fl.Field().String())
}

// IsValidKey reports whether s is a valid slug or setting key
func IsValidKey(s string) bool {
	return keyPattern.MatchString(s)
}

func validateWindow(start, end *time.Time) ValidationErrors {
	if start != nil && end != nil && !end.After(*start) {
		return ValidationErrors{{
			Field:   "endDate",
			Message: "must be after startDate",
			Value:   end,
			Rule:    "poll_window",
		}}
	}
	return nil
}

func validateOptions(options []models.QuestionOption, field string) ValidationErrors {
	var errors ValidationErrors
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		if strings.TrimSpace(opt.Value) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d].value", field, i),
				Message: "option value cannot be empty",
				Rule:    "question_config",
			})
			continue
		}
		if seen[opt.Value] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d].value", field, i),
				Message: "duplicate option value",
				Value:   opt.Value,
				Rule:    "question_config",
			})
		}
		seen[opt.Value] = true
	}
	return errors
}

func ruleError(field string, rules *models.ValidationRules, fallback string, value interface{}) ValidationError {
	msg := fallback
	if rules.CustomMessage != "" {
		msg = rules.CustomMessage
	}
	return ValidationError{Field: field, Message: msg, Value: value, Rule: "validation_rules"}
}

func itemSet(items []models.MatrixItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it.Value] = true
	}
	return set
}
