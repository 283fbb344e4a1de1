package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidStateTransition
	KindRefundLockActive
	KindConflict
	KindNotFound
	KindPermission
	KindUnauthorized
	KindGateway
)

var kindCodes = map[Kind]string{
	KindInternal:               "INTERNAL_ERROR",
	KindValidation:             "VALIDATION_ERROR",
	KindInvalidStateTransition: "INVALID_STATE_TRANSITION",
	KindRefundLockActive:       "REFUND_LOCK_ACTIVE",
	KindConflict:               "CONFLICT",
	KindNotFound:               "NOT_FOUND",
	KindPermission:             "PERMISSION_DENIED",
	KindUnauthorized:           "UNAUTHORIZED",
	KindGateway:                "GATEWAY_ERROR",
}

// Code returns the stable error code sent to clients.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInternal]
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidStateTransition:
		return http.StatusBadRequest
	case KindRefundLockActive, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed error returned by services.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidStateTransition,
		Message: fmt.Sprintf("cannot move refund from %s to %s", from, to),
	}
}

func RefundLocked(bookingID string) *Error {
	return &Error{
		Kind:    KindRefundLockActive,
		Message: fmt.Sprintf("booking %s has an active refund request", bookingID),
	}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Gateway(message string, err error) *Error {
	return &Error{Kind: KindGateway, Message: message, Err: err}
}

// Internal hides err from clients; the message is what they see.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports KindInternal for untyped errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
