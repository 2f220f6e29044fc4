// Package message is the client facade over the message ledger contract.
//
// It validates and signs appends, uploads file attachments to the blob
// store before appending their locator, and reads per-pair conversations.
package message
