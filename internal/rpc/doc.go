// Package rpc provides an HTTP implementation of the domain.LedgerClient
// interface, talking to a node served by package node.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Error bodies carrying a known code are mapped back to their
// domain sentinel so callers can use errors.Is. Read failures that a retry
// could fix are wrapped in domain.ErrTransientReadFailure.
package rpc
