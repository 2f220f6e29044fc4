// Package wallet implements the local signing agent.
//
// It enforces passphrase policy, generates the secp256k1 account key and
// persists it via a domain.KeyStore, and asks an Approver before exposing
// the account to the application. Account and network changes are published
// to subscribers as domain.AgentEvent values.
package wallet
