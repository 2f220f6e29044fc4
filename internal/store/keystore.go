package store

import (
	"crypto/ecdsa"
	"errors"
	"path/filepath"
	"sync"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/util/memzero"
)

const keystoreFilename = "keystore.json.enc"

// ErrNoKey is returned when no key has been created under the store's directory.
var ErrNoKey = errors.New("no signing key; run init first")

// KeyFileStore persists the local secp256k1 signing key to disk, encrypted
// under a passphrase.
type KeyFileStore struct {
	dir string
	mu  sync.Mutex

	// scrypt parameters; tests lower N to keep runs fast.
	n, r, p int
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	n, r, p := scryptParamsDefault()
	return &KeyFileStore{dir: dir, n: n, r: r, p: p}
}

// WithScryptN overrides the scrypt cost parameter.
func (s *KeyFileStore) WithScryptN(n int) *KeyFileStore {
	s.n = n
	return s
}

// SaveKey writes the encrypted key to disk, replacing any previous key.
func (s *KeyFileStore) SaveKey(passphrase string, key *ecdsa.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := crypto.MarshalKey(key)
	defer memzero.Zero(raw)

	bl, err := encrypt(passphrase, raw, crypto.AddressOf(key).Hex(), s.n, s.r, s.p)
	if err != nil {
		return err
	}
	return save(filepath.Join(s.dir, keystoreFilename), bl, 0o600)
}

// LoadKey reads and decrypts the key.
func (s *KeyFileStore) LoadKey(passphrase string) (*ecdsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bl, ok, err := s.read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoKey
	}
	raw, err := decrypt(passphrase, bl)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)
	return crypto.UnmarshalKey(raw)
}

// HasKey reports whether a keystore file exists.
func (s *KeyFileStore) HasKey() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.read()
	return ok, err
}

// Address returns the public address recorded alongside the key.
func (s *KeyFileStore) Address() (domain.Address, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bl, ok, err := s.read()
	if err != nil || !ok {
		return domain.Address{}, false, err
	}
	addr, err := crypto.ParseAddress(bl.Address)
	if err != nil {
		return domain.Address{}, false, err
	}
	return addr, true, nil
}

func (s *KeyFileStore) read() (blob, bool, error) {
	var bl blob
	ok, err := load(filepath.Join(s.dir, keystoreFilename), &bl)
	if err != nil || !ok {
		return blob{}, false, err
	}
	return bl, true, nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
