// Package session manages the client's signing session.
//
// A session is process-local and never persisted. It holds the address the
// signing agent has authorized, signs transactions for the registry and
// ledger facades, and resets itself on account or network changes reported
// by the agent.
package session
