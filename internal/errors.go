package internal

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation and configuration errors are returned
// synchronously to the requesting actor and never mutate shared state.
// An invariant violation is the only class that terminates a session.

// ValidationError rejects a single player action (wrong turn, wrong
// phase, duplicate vote, ...). Code is a stable machine-readable tag
// that the transport layer forwards to the offending client.
type ValidationError struct {
	Code string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action (%s): %s", e.Code, e.Msg)
}

func NewValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Validation error codes.
const (
	CodeWrongPhase         = "wrong_phase"
	CodeWrongTurn          = "wrong_turn"
	CodeBadTarget          = "bad_target"
	CodeContentTooLong     = "content_too_long"
	CodeEmptyContent       = "empty_content"
	CodeDuplicateVote      = "duplicate_vote"
	CodeQuotaUsed          = "accusation_quota_used"
	CodeNotSpy             = "not_spy"
	CodeUnknownPlayer      = "unknown_player"
	CodePlayerDisconnected = "player_disconnected"
	CodeSessionFull        = "session_full"
	CodeNotHost            = "not_host"
	CodeNoAccusation       = "no_accusation"
	CodeBadPayload         = "bad_payload"
	CodeUnknownType        = "unknown_type"
)

// ConfigurationError surfaces bad session-creation input: out-of-range
// player or bot counts, unsupported durations, malformed catalogs.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantViolation marks a state that correct operation can never
// reach. The session that raises one is forced to FINISHED with an
// internal-error end reason.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Msg
}

func NewInvariantViolation(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ValidationCode extracts the machine-readable code from a validation
// error, or "internal" for anything else.
func ValidationCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	if IsConfiguration(err) {
		return "configuration"
	}
	return "internal"
}
