package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/text/unicode/norm"
)

// MaxUsernameLength is the longest username, in runes, the registry accepts.
const MaxUsernameLength = 32

// ErrBadUsername is wrapped by NormalizeUsername failures.
var ErrBadUsername = errors.New("invalid username")

// Address is a public-key derived account or contract address.
type Address = common.Address

// Hash is a 32-byte Keccak-256 digest.
type Hash = common.Hash

// Username is the globally unique display name bound to an address.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// NetworkID scopes contract addresses and ledger state.
type NetworkID uint64

// String returns the decimal form of the network id.
func (n NetworkID) String() string { return fmt.Sprintf("%d", uint64(n)) }

// TxID uniquely identifies a submitted transaction.
type TxID string

// String returns the string form of the transaction id.
func (id TxID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// NormalizeUsername trims and NFC-normalizes s. Comparison after
// normalization is exact and case-sensitive.
func NormalizeUsername(s string) (Username, error) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrBadUsername)
	}
	if n := utf8.RuneCountInString(s); n > MaxUsernameLength {
		return "", fmt.Errorf("%w: %d runes, max %d", ErrBadUsername, n, MaxUsernameLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrBadUsername)
		}
	}
	return Username(s), nil
}

// ShortAddress renders a as 0x1234...abcd for compact display.
func ShortAddress(a Address) string {
	h := a.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}
