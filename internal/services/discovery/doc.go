// Package discovery finds people in the identity registry: the caller's
// friend list, exact search by address or username, and a local substring
// filter over an already fetched list.
package discovery
