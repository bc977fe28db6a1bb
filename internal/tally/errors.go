package tally

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks data that is not well-formed serialized JSON.
	ErrParse = errors.New("parse error")
	// ErrValidation marks parsed data that lacks the task-list shape.
	ErrValidation = errors.New("validation error")
	// ErrInvalidInput marks a rejected mutation request.
	ErrInvalidInput = errors.New("invalid input")

	ErrTaskNotFound    = fmt.Errorf("%w: task not found", ErrInvalidInput)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive whole number", ErrInvalidInput)
	ErrInvalidDate     = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	ErrNameTooLong     = fmt.Errorf("%w: name too long (max %d)", ErrInvalidInput, MaxNameLen)
	ErrNothingToUndo   = errors.New("nothing to undo")
)

// MaxNameLen bounds task names, in runes.
const MaxNameLen = 60

// ParseError reports input that could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrParse, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrParse, e.Source, e.Err)
}

// Unwrap exposes both the kind and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// ValidationError reports decoded data with the wrong shape.
type ValidationError struct {
	Source string
	Field  string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	return fmt.Sprintf("%s: %s", ErrValidation, msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidf(source, field, format string, args ...any) error {
	return &ValidationError{Source: source, Field: field, Msg: fmt.Sprintf(format, args...)}
}
