package types

// ContractKind names the two ledger programs a node can host.
type ContractKind string

const (
	ContractIdentityRegistry ContractKind = "identity_registry"
	ContractMessageLedger    ContractKind = "message_ledger"
)

// Contract is a deployed registry or message ledger instance.
type Contract struct {
	Address    Address      `json:"address"`
	Kind       ContractKind `json:"kind"`
	Registry   *Address     `json:"registry,omitempty"`
	Deployer   Address      `json:"deployer"`
	DeployedAt int64        `json:"deployed_at"`
}

// Deployment records the contract addresses a client is configured with.
type Deployment struct {
	NetworkID        NetworkID `json:"network_id"`
	IdentityRegistry Address   `json:"identity_registry"`
	MessageLedger    Address   `json:"message_ledger"`
	Deployer         Address   `json:"deployer"`
	DeployedAt       int64     `json:"deployed_at"`
}

// ChainReport is the result of walking a message ledger's hash chain.
type ChainReport struct {
	Entries uint64 `json:"entries"`
	Head    Hash   `json:"head"`
}
