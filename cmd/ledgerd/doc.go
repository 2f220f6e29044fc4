// Package main runs the ledger node: a single-process stand-in for the chain
// that hosts the identity registry and message ledger contracts. Clients
// talk to it through internal/rpc.
//
// HTTP API
//
//	GET /network
//	    Return the network id transactions must carry.
//
//	POST /tx
//	    Apply a SignedTransaction (deploy, register, addFriend, append) and
//	    return its Receipt. Rejected transactions change no state.
//
//	GET /contracts/{addr}
//	    Return a deployed contract's kind, deployer and bound registry.
//
//	GET /registry/{registry}/identities/{addr}[/exists]
//	    Return a registered identity, or whether one exists.
//
//	GET /registry/{registry}/usernames?name={username}
//	    Resolve an exact username to its address.
//
//	GET /ledger/{ledger}/conversations?a=&b=
//	    Return messages between a and b in append order.
//
//	GET /ledger/{ledger}/verify
//	    Walk the hash chain and report entries and head.
//
// Behaviour
//
//   - Chain state lives in LevelDB under <data>/chain and the registry in
//     SQLite at <data>/registry.db; both survive restarts.
//   - Errors are JSON {"error": code, "message": text} with a status mapped
//     from the failure kind.
//   - Each request is access-logged with method, path, status and duration.
//   - The default listen address is :8545.
package main
