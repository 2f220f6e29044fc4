// Package store provides file-based persistence for the client's local data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking, and writes go through a temp file and rename. Stored
// files typically live under the user's configured home directory.
//
// The package includes stores for:
//   - The secp256k1 signing key, scrypt + ChaCha20-Poly1305 (KeyFileStore)
//   - Signing agent state: authorized accounts, network (AgentFileStore)
//   - Contract addresses from a deployment (DeploymentFileStore)
//
// Ledger state is not stored here; it lives on the ledger node.
package store
