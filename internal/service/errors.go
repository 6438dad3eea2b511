package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorKind classifies service failures for transport mapping.
type ErrorKind string

// Error kinds.
const (
	KindNotFound      ErrorKind = "not_found"
	KindForbidden     ErrorKind = "forbidden"
	KindInvalidState  ErrorKind = "invalid_state"
	KindOracleFailure ErrorKind = "oracle_failure"
	KindStoreFailure  ErrorKind = "store_failure"
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindUnauthorized  ErrorKind = "unauthorized"
)

// Error is a classified service failure. Message is safe to show to clients; Err is not.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message, so wrapped copies still match sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithDetails returns a copy carrying client-visible details.
func (e *Error) WithDetails(details map[string]string) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Sentinel errors returned by services. Compare with errors.Is.
var (
	ErrCandidateNotFound    = newError(KindNotFound, "candidate not found")
	ErrCompanyNotFound      = newError(KindNotFound, "company not found")
	ErrInterviewNotFound    = newError(KindNotFound, "interview not found")
	ErrEvaluationNotFound   = newError(KindNotFound, "evaluation not found")
	ErrQuestionNotFound     = newError(KindNotFound, "question not found")
	ErrNoCurrentQuestion    = newError(KindNotFound, "no question at the current position")
	ErrInterviewForbidden   = newError(KindForbidden, "not authorized for this interview")
	ErrInterviewNotPending  = newError(KindInvalidState, "interview is not pending")
	ErrInterviewNotActive   = newError(KindInvalidState, "interview is not in progress")
	ErrInterviewNotComplete = newError(KindInvalidState, "interview is not completed")
	ErrInterviewNotReady    = newError(KindInvalidState, "interview questions are not provisioned")
	ErrProvisioningComplete = newError(KindInvalidState, "interview questions are already provisioned")
	ErrInterviewFinished    = newError(KindInvalidState, "interview can no longer be cancelled")
	ErrQuestionOutOfTurn    = newError(KindInvalidState, "question is not the current question")
	ErrAnswerAlreadyStored  = newError(KindInvalidState, "answer already submitted")
	ErrIncompleteInterview  = newError(KindInvalidState, "incomplete interview data")
	ErrEvaluationInProgress = newError(KindConflict, "evaluation is already being generated")
	ErrEmailTaken           = newError(KindConflict, "email already registered")
	ErrInvalidCredentials   = newError(KindUnauthorized, "invalid email or password")
	ErrMediaTooLarge        = newError(KindValidation, "media exceeds maximum allowed size")
	ErrMediaTypeNotAllowed  = newError(KindValidation, "media type not allowed")
	ErrInvalidAudio         = newError(KindValidation, "audio data is not valid base64")
	ErrMediaRequired        = newError(KindValidation, "media file is required")
	ErrQuestionGeneration   = newError(KindOracleFailure, "question generation failed")
	ErrAnswerScoring        = newError(KindOracleFailure, "answer scoring failed")
	ErrReportSynthesis      = newError(KindOracleFailure, "report synthesis failed")
	ErrMediaStorage         = newError(KindStoreFailure, "media storage unavailable")
	ErrStore                = newError(KindStoreFailure, "data store unavailable")
)

func wrap(sentinel *Error, err error) *Error {
	clone := *sentinel
	clone.Err = err
	return &clone
}

func storeFailure(err error) *Error {
	return wrap(ErrStore, err)
}

func validationFailure(err error) *Error {
	return &Error{Kind: KindValidation, Message: "invalid request payload", Err: err}
}

// KindOf extracts the kind of err. Validator errors count as validation; anything else is "".
func KindOf(err error) ErrorKind {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindValidation
	}
	return ""
}
