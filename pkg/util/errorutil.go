package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the core. Every failure a caller can provoke maps
// to exactly one of these; none is retried automatically.
const (
	// Authorization failures: the caller lacks standing.
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRoleNotHeld        = "ROLE_NOT_HELD"
	CodeNotYourAppointment = "NOT_YOUR_APPOINTMENT"

	// Not-found / lifecycle failures: the entity exists in an incompatible state.
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateRole   = "DUPLICATE_ROLE"
	CodeArchived        = "ARCHIVED"
	CodeAlreadyArchived = "ALREADY_ARCHIVED"
	CodeWrongState      = "WRONG_STATE"
	CodeAlreadyCanceled = "ALREADY_CANCELED"
	CodeNoActiveConsent = "NO_ACTIVE_CONSENT"

	// Input validity failures: a caller-supplied argument breaks a precondition.
	CodeUnknownPrincipal   = "UNKNOWN_PRINCIPAL"
	CodeInvalidSubject     = "INVALID_SUBJECT"
	CodeInvalidCounterpart = "INVALID_COUNTERPART"
	CodeInvalidDelegate    = "INVALID_DELEGATE"
	CodeInvalidDuration    = "INVALID_DURATION"
	CodeTimeInPast         = "TIME_IN_PAST"
	CodeValidationFailed   = "VALIDATION_FAILED"

	CodeInternal = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusForbidden, nil)
}

func NewRoleNotHeld(principal string, role string) error {
	return NewDomainError(CodeRoleNotHeld, "role not held", http.StatusConflict,
		map[string]any{"principal": principal, "role": role})
}

func NewDuplicateRole(principal string, role string) error {
	return NewDomainError(CodeDuplicateRole, "role already granted", http.StatusConflict,
		map[string]any{"principal": principal, "role": role})
}

func NewUnknownPrincipal(principal string) error {
	return NewDomainError(CodeUnknownPrincipal, "principal has never been granted a role", http.StatusNotFound,
		map[string]any{"principal": principal})
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewArchived(id uint64) error {
	return NewDomainError(CodeArchived, "record is archived", http.StatusConflict,
		map[string]any{"record_id": id})
}

func NewAlreadyArchived(id uint64) error {
	return NewDomainError(CodeAlreadyArchived, "record is already archived", http.StatusConflict,
		map[string]any{"record_id": id})
}

func NewInvalidSubject(principal string) error {
	return NewDomainError(CodeInvalidSubject, "subject does not hold an active patient role", http.StatusUnprocessableEntity,
		map[string]any{"subject": principal})
}

func NewInvalidCounterpart(principal string) error {
	return NewDomainError(CodeInvalidCounterpart, "counterpart does not hold an active doctor role", http.StatusUnprocessableEntity,
		map[string]any{"counterpart": principal})
}

func NewInvalidDelegate(message string) error {
	return NewDomainError(CodeInvalidDelegate, message, http.StatusUnprocessableEntity, nil)
}

func NewInvalidDuration() error {
	return NewDomainError(CodeInvalidDuration, "consent duration must be at least one day", http.StatusUnprocessableEntity, nil)
}

func NewNoActiveConsent(subject, delegate string) error {
	return NewDomainError(CodeNoActiveConsent, "no active consent for delegate", http.StatusConflict,
		map[string]any{"subject": subject, "delegate": delegate})
}

func NewTimeInPast() error {
	return NewDomainError(CodeTimeInPast, "scheduled time must be in the future", http.StatusUnprocessableEntity, nil)
}

func NewNotYourAppointment(id uint64) error {
	return NewDomainError(CodeNotYourAppointment, "caller is not the appointment counterpart", http.StatusForbidden,
		map[string]any{"appointment_id": id})
}

func NewWrongState(id uint64, status string) error {
	return NewDomainError(CodeWrongState, "appointment is not in a confirmable state", http.StatusConflict,
		map[string]any{"appointment_id": id, "status": status})
}

func NewAlreadyCanceled(id uint64) error {
	return NewDomainError(CodeAlreadyCanceled, "appointment is already canceled", http.StatusConflict,
		map[string]any{"appointment_id": id})
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf extracts the error code, or empty string for non-domain errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
