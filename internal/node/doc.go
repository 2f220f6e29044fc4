// Package node serves a ledger over JSON/HTTP.
//
// HTTP API
//
//	GET  /network
//	    Return {"network_id": N}.
//
//	POST /tx
//	    Apply a SignedTransaction and return its Receipt.
//
//	GET  /contracts/{addr}
//	    Return the Contract deployed at {addr}.
//
//	GET  /registry/{registry}/identities/{addr}/exists
//	GET  /registry/{registry}/identities/{addr}
//	GET  /registry/{registry}/usernames?name=
//	    Identity registry reads.
//
//	GET  /ledger/{ledger}/conversations?a={addr}&b={addr}
//	    Messages between a and b in append order.
//
//	GET  /ledger/{ledger}/verify
//	    Walk the hash chain and return a ChainReport.
//
// Errors are returned as {"error": code, "message": text} where code is
// stable (see domain.ErrorCode). Rejections use 400, 401, 404 or 409.
package node
