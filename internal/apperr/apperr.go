// Package apperr defines the error kinds surfaced to API clients.
//
// Every kind maps to a fixed HTTP status, a stable machine code and a default
// human readable detail. Handlers translate any *Error into the JSON body
// {"detail": ..., "code": ...}; anything else is reported as a 500.
package apperr

import (
	"errors"
	"net/http"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalid
	KindNotAuthenticated
	KindInvalidToken
	KindInvalidCredentials
	KindPermissionDenied
	KindNotFound
	KindEventNotFound
	KindAlreadyRegistered
	KindNotRegistered
	KindPasswordMismatch
	KindEmailAlreadyExists
	KindUsernameAlreadyExists
	KindThrottled
	KindUnsupportedMediaType
	KindPayloadTooLarge
)

type descriptor struct {
	status int
	code   string
	detail string
}

var descriptors = map[Kind]descriptor{
	KindUnknown:               {http.StatusInternalServerError, "internal_error", "A server error occurred."},
	KindInvalid:               {http.StatusBadRequest, "invalid", "Invalid input."},
	KindNotAuthenticated:      {http.StatusUnauthorized, "not_authenticated", "Authentication credentials were not provided."},
	KindInvalidToken:          {http.StatusUnauthorized, "token_not_valid", "Given token not valid for any token type."},
	KindInvalidCredentials:    {http.StatusUnauthorized, "no_active_account", "No active account found with the given credentials."},
	KindPermissionDenied:      {http.StatusForbidden, "permission_denied", "You don't have permission to perform this action."},
	KindNotFound:              {http.StatusNotFound, "not_found", "Not found."},
	KindEventNotFound:         {http.StatusNotFound, "event_not_found", "Event not found."},
	KindAlreadyRegistered:     {http.StatusBadRequest, "already_registered", "You are already registered for this event."},
	KindNotRegistered:         {http.StatusBadRequest, "not_registered", "You are not registered for this event."},
	KindPasswordMismatch:      {http.StatusBadRequest, "password_mismatch", "Passwords don't match."},
	KindEmailAlreadyExists:    {http.StatusBadRequest, "email_exists", "User with this email already exists."},
	KindUsernameAlreadyExists: {http.StatusBadRequest, "username_exists", "User with this username already exists."},
	KindThrottled:             {http.StatusTooManyRequests, "throttled", "Request was throttled."},
	KindUnsupportedMediaType:  {http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported media type in request."},
	KindPayloadTooLarge:       {http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large."},
}

func (k Kind) Status() int {
	if d, ok := descriptors[k]; ok {
		return d.status
	}
	return http.StatusInternalServerError
}

func (k Kind) Code() string {
	if d, ok := descriptors[k]; ok {
		return d.code
	}
	return descriptors[KindUnknown].code
}

func (k Kind) DefaultDetail() string {
	if d, ok := descriptors[k]; ok {
		return d.detail
	}
	return descriptors[KindUnknown].detail
}

func (k Kind) String() string {
	return k.Code()
}

// Error is a domain failure of a known kind. Two errors match under errors.Is
// when their kinds are equal, whatever their detail.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Kind.Code() + ": " + e.Detail
	}
	return e.Kind.Code()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Status() int { return e.Kind.Status() }

func (e *Error) Code() string { return e.Kind.Code() }

// Message returns the detail, falling back to the kind's default.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.DefaultDetail()
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Body is the JSON shape of every error response.
type Body struct {
	Detail    string       `json:"detail"`
	Code      string       `json:"code"`
	RequestID string       `json:"requestId,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

func (e *Error) Body(requestID string) Body {
	return Body{
		Detail:    e.Message(),
		Code:      e.Code(),
		RequestID: requestID,
	}
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

func WithDetail(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// KindOf reports the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	ErrAlreadyRegistered     = New(KindAlreadyRegistered)
	ErrNotRegistered         = New(KindNotRegistered)
	ErrPermissionDenied      = New(KindPermissionDenied)
	ErrEventNotFound         = New(KindEventNotFound)
	ErrPasswordMismatch      = New(KindPasswordMismatch)
	ErrEmailAlreadyExists    = New(KindEmailAlreadyExists)
	ErrUsernameAlreadyExists = New(KindUsernameAlreadyExists)
	ErrNotAuthenticated      = New(KindNotAuthenticated)
	ErrInvalidToken          = New(KindInvalidToken)
	ErrInvalidCredentials    = New(KindInvalidCredentials)
	ErrThrottled             = New(KindThrottled)
)
