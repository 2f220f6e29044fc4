// Package blob is the client for the external attachment store.
//
// Uploads return a locator URL that is stored verbatim as the content of a
// file message. Metadata reads are best-effort and fail only with
// domain.ErrBlobUnavailable.
package blob
