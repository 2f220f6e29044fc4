// Package deploy publishes the identity registry and message ledger
// contracts to a node.
package deploy
