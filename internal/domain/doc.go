// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state), contracts (interfaces) and the error
// taxonomy only.
//
// Errors fall into three groups: authoritative ledger rejections
// (IsAuthoritative), locally recoverable read failures (IsTransient), and
// session failures that force a reconnect. ErrorCode and ErrorFromCode give
// each sentinel a stable wire form so the node and the client agree.
package domain
