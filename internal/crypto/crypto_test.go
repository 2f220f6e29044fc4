package crypto_test

import (
	"errors"
	"testing"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

func TestSignTransaction_RecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	contract := crypto.ContractAddress(crypto.AddressOf(key), 0)

	tx, err := crypto.NewTransaction(contract, domain.MethodRegister, domain.RegisterParams{Username: "alice"})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	stx, err := crypto.SignTransaction(key, tx)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	if stx.Tx.From != crypto.AddressOf(key) {
		t.Fatalf("From = %s, want %s", stx.Tx.From.Hex(), crypto.AddressOf(key).Hex())
	}
	if err := crypto.VerifyTransaction(stx); err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}
}

func TestVerifyTransaction_TamperedParams(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tx, err := crypto.NewTransaction(domain.Address{1}, domain.MethodRegister, domain.RegisterParams{Username: "alice"})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	stx, err := crypto.SignTransaction(key, tx)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	stx.Tx.Params = []byte(`{"username":"mallory"}`)
	if err := crypto.VerifyTransaction(stx); !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

func TestVerifyTransaction_ShortSignature(t *testing.T) {
	stx := domain.SignedTransaction{Signature: []byte{1, 2, 3}}
	if err := crypto.VerifyTransaction(stx); !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := crypto.ParseAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"); err != nil {
		t.Fatalf("valid address rejected: %v", err)
	}
	for _, s := range []string{"", "alice", "0x1234", "5FbDB2315678afecb367f032d93F642f64180aa3zz"} {
		if _, err := crypto.ParseAddress(s); !errors.Is(err, domain.ErrInvalidAddress) {
			t.Fatalf("ParseAddress(%q): want ErrInvalidAddress, got %v", s, err)
		}
	}
}

func TestContractAddress_Deterministic(t *testing.T) {
	deployer := domain.Address{0xaa}
	a := crypto.ContractAddress(deployer, 0)
	b := crypto.ContractAddress(deployer, 1)
	if a == b {
		t.Fatal("distinct nonces produced the same address")
	}
	if a != crypto.ContractAddress(deployer, 0) {
		t.Fatal("same nonce produced different addresses")
	}
}

func TestChainHash_DependsOnPredecessor(t *testing.T) {
	p := []byte("payload")
	if crypto.ChainHash(domain.Hash{}, p) == crypto.ChainHash(domain.Hash{1}, p) {
		t.Fatal("chain hash ignores predecessor")
	}
}
