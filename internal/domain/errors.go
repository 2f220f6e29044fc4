package domain

import (
	"errors"

	types "cryptocomm/internal/domain/types"
)

// Session and agent failures.
var (
	ErrNotConnected     = errors.New("not connected: authorize a signing session first")
	ErrUserRejected     = errors.New("authorization rejected by user")
	ErrAgentUnavailable = errors.New("signing agent unavailable")
	ErrNetworkMismatch  = errors.New("network mismatch")
)

// Authoritative rejections from the ledger. Retrying cannot change them.
var (
	ErrAlreadyRegistered = errors.New("address already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrNotRegistered     = errors.New("address not registered")
	ErrAlreadyFriends    = errors.New("already friends")

	ErrSelfNotRegistered      error = &registrationError{"caller not registered"}
	ErrTargetNotRegistered    error = &registrationError{"friend not registered"}
	ErrRecipientNotRegistered error = &registrationError{"recipient not registered"}
)

// Input and transaction validation failures.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidUsername     = types.ErrBadUsername
	ErrEmptyContent        = errors.New("message content is empty")
	ErrInvalidKind         = errors.New("invalid message kind")
	ErrBadSignature        = errors.New("transaction signature does not match sender")
	ErrReplayedTransaction = errors.New("transaction already applied")
	ErrUnknownContract     = errors.New("no contract deployed at address")
	ErrUnknownMethod       = errors.New("unknown contract method")
	ErrMalformedParams     = errors.New("malformed transaction params")
	ErrLedgerTampered      = errors.New("ledger hash chain broken")
)

// Locally recoverable failures.
var (
	ErrTransientReadFailure = errors.New("ledger read failed")
	ErrBlobUnavailable      = errors.New("blob metadata unavailable")
)

// registrationError is a specific not-registered case that still matches
// ErrNotRegistered under errors.Is.
type registrationError struct{ msg string }

func (e *registrationError) Error() string { return e.msg }

func (e *registrationError) Is(target error) bool { return target == ErrNotRegistered }

// errorCodes is ordered most specific first; ErrorCode returns the first match.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNotConnected, "not_connected"},
	{ErrUserRejected, "user_rejected"},
	{ErrAgentUnavailable, "agent_unavailable"},
	{ErrNetworkMismatch, "network_mismatch"},
	{ErrAlreadyRegistered, "already_registered"},
	{ErrUsernameTaken, "username_taken"},
	{ErrSelfNotRegistered, "self_not_registered"},
	{ErrTargetNotRegistered, "target_not_registered"},
	{ErrRecipientNotRegistered, "recipient_not_registered"},
	{ErrNotRegistered, "not_registered"},
	{ErrAlreadyFriends, "already_friends"},
	{ErrInvalidAddress, "invalid_address"},
	{ErrInvalidUsername, "invalid_username"},
	{ErrEmptyContent, "empty_content"},
	{ErrInvalidKind, "invalid_kind"},
	{ErrBadSignature, "bad_signature"},
	{ErrReplayedTransaction, "replayed_transaction"},
	{ErrUnknownContract, "unknown_contract"},
	{ErrUnknownMethod, "unknown_method"},
	{ErrMalformedParams, "malformed_params"},
	{ErrLedgerTampered, "ledger_tampered"},
	{ErrTransientReadFailure, "transient_read_failure"},
	{ErrBlobUnavailable, "blob_unavailable"},
}

// ErrorCode returns the stable wire code for err, or "" if err is not one of
// the sentinels above.
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}

// ErrorFromCode maps a wire code back to its sentinel, or nil if unknown.
func ErrorFromCode(code string) error {
	for _, e := range errorCodes {
		if e.code == code {
			return e.err
		}
	}
	return nil
}

// IsAuthoritative reports whether err is a ledger rejection that must be
// shown to the user as is and never retried.
func IsAuthoritative(err error) bool {
	for _, target := range []error{
		ErrAlreadyRegistered,
		ErrUsernameTaken,
		ErrNotRegistered,
		ErrAlreadyFriends,
		ErrInvalidAddress,
		ErrInvalidUsername,
		ErrEmptyContent,
		ErrInvalidKind,
		ErrBadSignature,
		ErrReplayedTransaction,
		ErrUnknownContract,
		ErrUnknownMethod,
		ErrMalformedParams,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err leaves the affected view recoverable by a
// manual retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientReadFailure) || errors.Is(err, ErrBlobUnavailable)
}
