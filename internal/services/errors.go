package services

import (
	"errors"
	"fmt"

	"github.com/darab-cement/cms-service/internal/validator"
)

// Error classes; every sentinel below unwraps to exactly one of them
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ServiceError is a sentinel with a user facing message and an error class
type ServiceError struct {
	class   error
	Message string
}

func newServiceError(class error, message string) *ServiceError {
	return &ServiceError{class: class, Message: message}
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.class }

// Auth
var (
	ErrInvalidCredentials = newServiceError(ErrUnauthorized, "Invalid credentials")
	ErrAccountInactive    = newServiceError(ErrUnauthorized, "Account is inactive")
	ErrInvalidToken       = newServiceError(ErrUnauthorized, "Invalid or expired token")
	ErrUserNotFound       = newServiceError(ErrNotFound, "User not found")
)

// Polls
var (
	ErrPollNotFound       = newServiceError(ErrNotFound, "Poll not found")
	ErrResponseNotFound   = newServiceError(ErrNotFound, "Poll response not found")
	ErrSimplePollNotFound = newServiceError(ErrNotFound, "Simple poll not found")
	ErrPollNotActive      = newServiceError(ErrBadRequest, "This poll is not active")
	ErrPollNotStarted     = newServiceError(ErrBadRequest, "This poll has not started yet")
	ErrPollEnded          = newServiceError(ErrBadRequest, "This poll has ended")
	ErrAlreadyResponded   = newServiceError(ErrBadRequest, "You have already responded to this poll")
	ErrQuestionNotInPoll  = newServiceError(ErrBadRequest, "Question does not belong to this poll")
	ErrNotSupplierPoll    = newServiceError(ErrBadRequest, "Poll is not a supplier satisfaction poll")
	ErrUnsupportedExport  = newServiceError(ErrBadRequest, "Unsupported export format")
	ErrInvalidBulkAction  = newServiceError(ErrBadRequest, "Unsupported bulk action")
)

// Content
var (
	ErrPostNotFound      = newServiceError(ErrNotFound, "Post not found")
	ErrCategoryNotFound  = newServiceError(ErrNotFound, "Category not found")
	ErrInvalidParent     = newServiceError(ErrBadRequest, "Category cannot be its own parent")
	ErrProductNotFound   = newServiceError(ErrNotFound, "Product not found")
	ErrMediaNotFound     = newServiceError(ErrNotFound, "Media not found")
	ErrMediaURLRequired  = newServiceError(ErrBadRequest, "URL is required for url and iframe media")
	ErrGalleryFiles      = newServiceError(ErrBadRequest, "A gallery needs between 1 and 10 files")
	ErrPersonnelNotFound = newServiceError(ErrNotFound, "Personnel not found")
	ErrSettingNotFound   = newServiceError(ErrNotFound, "Landing setting not found")
	ErrTooManyFiles      = newServiceError(ErrBadRequest, "Too many files")
)

// Tickets
var (
	ErrTicketNotFound = newServiceError(ErrNotFound, "Ticket not found")
)

// ValidationErrors is the field level error list produced by the validator
type ValidationErrors = validator.ValidationErrors

// PermissionError reports an authorization failure on one resource
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

// BusinessRuleError reports a request that is well formed but breaks a domain rule
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

// ConflictError reports a unique field that is already taken
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
