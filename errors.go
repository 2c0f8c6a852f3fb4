package converge

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

// Application error codes carried by the remote creative API.
const (
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeActiveSessionExists = "ACTIVE_SESSION_EXISTS"
	ErrCodeSessionExpired      = "SESSION_EXPIRED"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeRegenerationLimit   = "REGENERATION_LIMIT_REACHED"
	ErrCodeGenerationFailed    = "GENERATION_FAILED"
	ErrCodeInvalidDimension    = "INVALID_DIMENSION"
)

// Local precondition codes; these never reach the network.
const (
	ErrCodeNoActiveSession = "NO_ACTIVE_SESSION"
	ErrCodeInvalidStep     = "INVALID_STEP"
)

var (
	ErrInsufficientBalance = errors.New("insufficient credit balance", errors.CategoryConflict).
				WithTextCode(ErrCodeInsufficientBalance)
	ErrActiveSessionExists = errors.New("another session is already active", errors.CategoryConflict).
				WithTextCode(ErrCodeActiveSessionExists)
	ErrSessionExpired = errors.New("session expired", errors.CategoryConflict).
				WithTextCode(ErrCodeSessionExpired)
	ErrSessionNotFound = errors.New("session not found", errors.CategoryBadInput).
				WithTextCode(ErrCodeSessionNotFound)
	ErrRegenerationLimit = errors.New("regeneration limit reached", errors.CategoryBadInput).
				WithTextCode(ErrCodeRegenerationLimit)
	ErrGenerationFailed = errors.New("generation failed", errors.CategoryExternal).
				WithTextCode(ErrCodeGenerationFailed)
	ErrNoActiveSession = errors.New("no active session", errors.CategoryBadInput).
				WithTextCode(ErrCodeNoActiveSession)
	ErrInvalidStep = errors.New("operation not valid at this step", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidStep)
)

// CloneSessionError clones a base error with a message, source and metadata.
func CloneSessionError(base *errors.Error, message string, source error, metadata map[string]any) *errors.Error {
	if base == nil {
		base = ErrGenerationFailed
	}
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if source != nil {
		err.Source = source
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// ErrorCode extracts the text code from a structured application error.
func ErrorCode(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// ErrorMetadata extracts structured details from an application error.
func ErrorMetadata(err error) map[string]any {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		return ge.Metadata
	}
	return nil
}

// IsCancellation reports whether err represents a cooperative cancellation.
// Only context.Canceled qualifies: a deadline expiry is a failure the user
// must see, not something they asked for.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return true
	}
	var ge *errors.Error
	if stderrors.As(err, &ge) && ge.Source != nil {
		return stderrors.Is(ge.Source, context.Canceled)
	}
	return false
}
