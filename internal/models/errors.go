package models

import "errors"

// HTTPExceptionResponse is the generic error payload.
// Detail is either a string or a JSON object.
// swagger:model HTTPExceptionResponse
type HTTPExceptionResponse struct {
	// required: true
	// example: Invalid credentials
	Detail any `json:"detail"`
}

// ValidationError describes a single field-level validation failure.
// Loc elements are strings or integers.
// swagger:model ValidationError
type ValidationError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// HTTPValidationError aggregates validation failures.
// swagger:model HTTPValidationError
type HTTPValidationError struct {
	Detail []ValidationError `json:"detail"`
}

// ErrUserAlreadyExists is returned by user stores when the username is taken.
var ErrUserAlreadyExists = errors.New("user already exists")
