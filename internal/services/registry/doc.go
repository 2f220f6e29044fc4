// Package registry is the client facade over the identity registry
// contract: registration, lookups and the friend list.
package registry
