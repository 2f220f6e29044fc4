package interfaces

import (
	"context"

	domaintypes "cryptocomm/internal/domain/types"
)

// LedgerClient is how the client talks to a ledger node.
type LedgerClient interface {
	NetworkID(ctx context.Context) (domaintypes.NetworkID, error)
	Contract(ctx context.Context, addr domaintypes.Address) (domaintypes.Contract, error)

	// Submit sends a signed write and waits for its receipt.
	Submit(ctx context.Context, stx domaintypes.SignedTransaction) (domaintypes.Receipt, error)

	Exists(ctx context.Context, registry, addr domaintypes.Address) (bool, error)
	Lookup(ctx context.Context, registry, addr domaintypes.Address) (domaintypes.Identity, error)
	ResolveUsername(
		ctx context.Context,
		registry domaintypes.Address,
		username domaintypes.Username,
	) (domaintypes.Address, bool, error)

	ReadConversation(
		ctx context.Context,
		ledger, a, b domaintypes.Address,
	) ([]domaintypes.Message, error)
	Verify(ctx context.Context, ledger domaintypes.Address) (domaintypes.ChainReport, error)
}
