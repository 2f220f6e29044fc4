// Package conversation derives the per-pair view of the message ledger.
//
// A View moves Idle → Loading → Ready or Error. Every load reads the whole
// pair history from the ledger; there is no client-side index or cache.
package conversation
