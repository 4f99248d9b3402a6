// Package dserr defines the typed errors returned by the host API.
package dserr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeConfirmationNeeded  = "CONFIRMATION_REQUIRED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeCommandFailed       = "COMMAND_FAILED"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")

	// ErrConfirmationRequired is returned when a mutating command arrives without a valid confirmation token.
	ErrConfirmationRequired = New(fiber.StatusConflict, CodeConfirmationNeeded, "this action must be confirmed before it is executed")

	// ErrUpstreamUnavailable is returned when the dashboard backend could not be reached.
	ErrUpstreamUnavailable = New(fiber.StatusBadGateway, CodeUpstreamUnavailable, "the dashboard backend is unavailable")

	// ErrCommandFailed is returned when the dashboard backend rejected a command.
	ErrCommandFailed = New(fiber.StatusBadGateway, CodeCommandFailed, "the command was rejected by the dashboard backend")
)

type Extras map[string]any

type DashError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *DashError {
	return &DashError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// Msg returns a copy of e with a formatted message.
func (e DashError) Msg(format string, parts ...any) *DashError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

// WithExtras returns a copy of e carrying extra response fields.
func (e DashError) WithExtras(extras Extras) *DashError {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *DashError {
	return ErrInvalidReq.WithExtras(Extras{
		"violations": violations,
	})
}

func (e *DashError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}
