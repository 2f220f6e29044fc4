package wallet

import (
	"fmt"
	"unicode"
)

// minPassphraseLength is the shortest passphrase Generate accepts for the
// keystore that holds the account's signing key.
const minPassphraseLength = 12

// ErrWeakPassphrase is returned by Generate when the passphrase that would
// encrypt the signing key fails isSecurePassphrase. An existing keystore is
// never re-checked, so older keys stay unlockable if the policy tightens.
var ErrWeakPassphrase = fmt.Errorf(
	"passphrase is too weak (need %d+ characters with upper, lower, digit and symbol)",
	minPassphraseLength,
)

// isSecurePassphrase reports whether passphrase is strong enough to guard a
// key that can sign registry and ledger transactions: long enough, and
// mixing upper case, lower case, digits and punctuation or symbols.
func isSecurePassphrase(passphrase string) bool {
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
