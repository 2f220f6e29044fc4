// Package crypto exposes the minimal primitives used by CryptoComm.
//
// Contents
//
//   - secp256k1 key generation and address derivation (GenerateKey, AddressOf)
//   - Transaction construction, hashing, signing and signer recovery
//     (NewTransaction, TxHash, SignTransaction, RecoverSigner)
//   - Deterministic contract addresses (ContractAddress)
//   - Hash-chain links for the message ledger (ChainHash)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Keys and addresses are go-ethereum types so that addresses are the familiar
// 20-byte hex accounts. Callers should treat returned private keys as
// sensitive and drop references as soon as practical.
package crypto
