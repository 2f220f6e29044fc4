package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}

// FingerprintKey fingerprints the uncompressed public half of key.
func FingerprintKey(key *ecdsa.PrivateKey) string {
	return Fingerprint(gethcrypto.FromECDSAPub(&key.PublicKey))
}
