package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	// The current supported version of the encrypted blob format stored on disk.
	keystoreFormatVersion = 1
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// ciphertext has been modified / corrupted.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")
)

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
// Address is public and lets the agent report its account without unlocking.
type blob struct {
	V       int    `json:"v"`
	Address string `json:"address,omitempty"`
	Salt    []byte `json:"salt"`
	N       int    `json:"scrypt_N"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Cipher  []byte `json:"cipher"`
}

// encrypt derives a key from passphrase and seals raw into a blob. The
// address is bound as associated data alongside the salt.
func encrypt(passphrase string, raw []byte, address string, N, r, p int) (blob, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:] /* #nosec G404 */); err != nil {
		return blob{}, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return blob{}, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return blob{}, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, associatedData(salt[:], address))

	return blob{
		V:       keystoreFormatVersion,
		Address: address,
		Salt:    salt[:],
		N:       N,
		R:       r,
		P:       p,
		Cipher:  ct,
	}, nil
}

// decrypt opens bl using a key derived from passphrase.
func decrypt(passphrase string, bl blob) ([]byte, error) {
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, associatedData(bl.Salt, bl.Address))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func associatedData(salt []byte, address string) []byte {
	return append(append([]byte(nil), salt...), address...)
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
