package crypto

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"cryptocomm/internal/domain"
)

// NewTransaction builds an unsigned transaction for method on contract with
// a fresh time-ordered id. From and Network are left for the signer.
func NewTransaction(contract domain.Address, method string, params any) (domain.Transaction, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("encode %s params: %w", method, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:        domain.TxID(id.String()),
		Contract:  contract,
		Method:    method,
		Params:    raw,
		Timestamp: time.Now().Unix(),
	}, nil
}

// TxHash is the Keccak-256 digest of the transaction's JSON encoding.
func TxHash(tx domain.Transaction) (domain.Hash, error) {
	b, err := json.Marshal(tx)
	if err != nil {
		return domain.Hash{}, err
	}
	return gethcrypto.Keccak256Hash(b), nil
}

// SignTransaction signs tx with key, setting From to the key's address.
func SignTransaction(key *ecdsa.PrivateKey, tx domain.Transaction) (domain.SignedTransaction, error) {
	tx.From = AddressOf(key)
	h, err := TxHash(tx)
	if err != nil {
		return domain.SignedTransaction{}, err
	}
	sig, err := SignHash(key, h)
	if err != nil {
		return domain.SignedTransaction{}, err
	}
	return domain.SignedTransaction{Tx: tx, Signature: sig}, nil
}

// RecoverSigner returns the address that produced stx.Signature. It does
// not compare against stx.Tx.From; see VerifyTransaction.
func RecoverSigner(stx domain.SignedTransaction) (domain.Address, error) {
	if len(stx.Signature) != gethcrypto.SignatureLength {
		return domain.Address{}, fmt.Errorf("%w: signature is %d bytes", domain.ErrBadSignature, len(stx.Signature))
	}
	h, err := TxHash(stx.Tx)
	if err != nil {
		return domain.Address{}, err
	}
	pub, err := gethcrypto.SigToPub(h.Bytes(), stx.Signature)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	}
	return gethcrypto.PubkeyToAddress(*pub), nil
}

// VerifyTransaction checks that stx was signed by stx.Tx.From.
func VerifyTransaction(stx domain.SignedTransaction) error {
	signer, err := RecoverSigner(stx)
	if err != nil {
		return err
	}
	if signer != stx.Tx.From {
		return fmt.Errorf("%w: signed by %s, claims %s", domain.ErrBadSignature, signer.Hex(), stx.Tx.From.Hex())
	}
	return nil
}
