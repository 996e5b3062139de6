package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Mission lifecycle errors
var (
	ErrMissionNotFound   = errors.New("mission not found")
	ErrValidation        = errors.New("missing or malformed required field")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("mission is not in an active status")
	ErrUnknownStatus     = errors.New("unknown mission status")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrNotAnAgent        = errors.New("user is not an agent")
)

// Pricing errors
var (
	ErrRateCardNotFound = errors.New("rate card not found")
)
