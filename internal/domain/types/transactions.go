package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Ledger methods a transaction may invoke.
const (
	MethodDeploy    = "deploy"
	MethodRegister  = "register"
	MethodAddFriend = "addFriend"
	MethodAppend    = "append"
)

// Transaction is a write request addressed to a contract. It is signed as a
// whole; the ledger recovers the signer and checks it against From.
type Transaction struct {
	ID        TxID            `json:"id"`
	Network   NetworkID       `json:"network"`
	Contract  Address         `json:"contract"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
	From      Address         `json:"from"`
	Timestamp int64           `json:"timestamp"`
}

// SignedTransaction carries a transaction and its 65-byte secp256k1
// signature over the transaction hash.
type SignedTransaction struct {
	Tx        Transaction   `json:"tx"`
	Signature hexutil.Bytes `json:"signature"`
}

// Receipt confirms that a transaction was applied. Contract is the deployed
// address for deploy transactions and the target contract otherwise.
type Receipt struct {
	TxID      TxID    `json:"tx_id"`
	Contract  Address `json:"contract"`
	Sequence  uint64  `json:"sequence,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// RegisterParams is the payload of MethodRegister.
type RegisterParams struct {
	Username Username `json:"username"`
}

// AddFriendParams is the payload of MethodAddFriend.
type AddFriendParams struct {
	Friend Address `json:"friend"`
}

// AppendParams is the payload of MethodAppend.
type AppendParams struct {
	Recipient Address     `json:"recipient"`
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
}

// DeployParams is the payload of MethodDeploy. Registry is required when
// Kind is ContractMessageLedger.
type DeployParams struct {
	Kind     ContractKind `json:"kind"`
	Registry *Address     `json:"registry,omitempty"`
}
