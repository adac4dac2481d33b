package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed    = errors.New("generation failed")
	ErrScriptGeneration    = errors.New("script generation failed")
	ErrRenderTimeout       = errors.New("render timeout")
	ErrRenderFailed        = errors.New("render failed")
	ErrSynthesisFailed     = errors.New("synthesis failed")
	ErrAssemblyFailed      = errors.New("assembly failed")
	ErrStitchFailed        = errors.New("stitch failed")
	ErrInvalidClipList     = errors.New("invalid clip list")
	ErrPackagingIncomplete = errors.New("packaging incomplete")
)

// ErrorClass groups stage failures by how callers should react to them.
type ErrorClass string

const (
	// ClassProvider covers failed or timed-out external calls. Recoverable
	// only by retrying the whole job.
	ClassProvider ErrorClass = "provider"
	// ClassEncoding covers media engine failures and missing encoder output.
	ClassEncoding ErrorClass = "encoding"
	// ClassValidation covers provider responses that fail schema validation.
	ClassValidation ErrorClass = "validation"
	// ClassResource covers missing or unwritable filesystem paths.
	ClassResource ErrorClass = "resource"
)

// StageError is the single classified failure surfaced to callers: which
// pipeline stage failed, how the failure is classified, and the cause.
type StageError struct {
	Stage string
	Class ErrorClass
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Class, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the originating stage name and its class.
func NewStageError(stage string, class ErrorClass, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Class: class, Err: err}
}

// ClassOf reports the error class of err, defaulting to ClassProvider when no
// StageError is found in the chain.
func ClassOf(err error) ErrorClass {
	var se *StageError
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassProvider
}

// StageOf reports the originating stage name, or an empty string.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
