// Package ledger implements the node-side state of the identity registry and
// message ledger contracts.
//
// Identity and friend state lives in SQLite; deployed contracts, applied
// transaction ids and the hash-chained message log live in LevelDB.
package ledger
