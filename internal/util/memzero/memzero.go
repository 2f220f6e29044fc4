// Package memzero wipes secret material held in byte slices.
package memzero

import "runtime"

// Zero clears every buffer. Use it with defer on decrypted key bytes and
// other plaintext secrets once they are no longer needed.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
		runtime.KeepAlive(b)
	}
}
