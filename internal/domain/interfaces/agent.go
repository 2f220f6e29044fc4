package interfaces

import (
	"context"

	domaintypes "cryptocomm/internal/domain/types"
)

// SigningAgent holds private keys and authorizes actions on the user's behalf.
type SigningAgent interface {
	// RequestAuthorization prompts the user and returns the authorized address.
	RequestAuthorization(ctx context.Context) (domaintypes.Address, error)
	// AuthorizedAddresses returns previously authorized addresses without prompting.
	AuthorizedAddresses() ([]domaintypes.Address, error)
	// SignHash signs a 32-byte digest with the key behind account.
	SignHash(account domaintypes.Address, hash domaintypes.Hash) ([]byte, error)
	// Network is the network the agent currently targets.
	Network() domaintypes.NetworkID
	// Subscribe registers handler for account and network events. The
	// returned func removes the registration.
	Subscribe(handler func(domaintypes.AgentEvent)) (unsubscribe func())
}
