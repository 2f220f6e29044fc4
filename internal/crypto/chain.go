package crypto

import (
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"cryptocomm/internal/domain"
)

// ChainHash links payload to its predecessor: keccak256(prev || payload).
func ChainHash(prev domain.Hash, payload []byte) domain.Hash {
	return gethcrypto.Keccak256Hash(prev.Bytes(), payload)
}
