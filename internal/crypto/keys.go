package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"cryptocomm/internal/domain"
)

// GenerateKey returns a fresh secp256k1 signing key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return gethcrypto.GenerateKey()
}

// AddressOf returns the account address controlled by key.
func AddressOf(key *ecdsa.PrivateKey) domain.Address {
	return gethcrypto.PubkeyToAddress(key.PublicKey)
}

// MarshalKey returns the 32-byte scalar of key.
func MarshalKey(key *ecdsa.PrivateKey) []byte {
	return gethcrypto.FromECDSA(key)
}

// UnmarshalKey parses a 32-byte scalar into a signing key.
func UnmarshalKey(b []byte) (*ecdsa.PrivateKey, error) {
	return gethcrypto.ToECDSA(b)
}

// SignHash signs a 32-byte digest, returning a 65-byte [R || S || V] signature.
func SignHash(key *ecdsa.PrivateKey, hash domain.Hash) ([]byte, error) {
	return gethcrypto.Sign(hash.Bytes(), key)
}

// ParseAddress validates s as a hex address.
func ParseAddress(s string) (domain.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return domain.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// IsAddress reports whether s parses as a hex address.
func IsAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// ContractAddress derives the address of the nonce-th contract deployed by
// deployer.
func ContractAddress(deployer domain.Address, nonce uint64) domain.Address {
	return gethcrypto.CreateAddress(deployer, nonce)
}
