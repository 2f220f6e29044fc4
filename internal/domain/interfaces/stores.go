package interfaces

import (
	"crypto/ecdsa"

	domaintypes "cryptocomm/internal/domain/types"
)

// KeyStore persists the local signing key encrypted under a passphrase.
type KeyStore interface {
	SaveKey(passphrase string, key *ecdsa.PrivateKey) error
	LoadKey(passphrase string) (*ecdsa.PrivateKey, error)
	HasKey() (bool, error)
}

// AgentStateStore persists which addresses the agent has authorized.
type AgentStateStore interface {
	SaveAgentState(state domaintypes.AgentState) error
	LoadAgentState() (domaintypes.AgentState, bool, error)
}

// DeploymentStore persists the contract addresses written by a deployment.
type DeploymentStore interface {
	SaveDeployment(d domaintypes.Deployment) error
	LoadDeployment() (domaintypes.Deployment, bool, error)
}
