package interfaces

import (
	"context"
	"io"

	domaintypes "cryptocomm/internal/domain/types"
)

// Session is the signing identity handed to registry and ledger facades.
type Session interface {
	// RequireAddress returns the session address or ErrNotConnected.
	RequireAddress() (domaintypes.Address, error)
	Network() domaintypes.NetworkID
	// SignTransaction stamps tx with the session address and network and signs it.
	SignTransaction(tx domaintypes.Transaction) (domaintypes.SignedTransaction, error)
}

// IdentityRegistry is the client view of the on-ledger directory.
type IdentityRegistry interface {
	Register(ctx context.Context, username string) (domaintypes.Receipt, error)
	Exists(ctx context.Context, addr domaintypes.Address) (bool, error)
	Lookup(ctx context.Context, addr domaintypes.Address) (domaintypes.Identity, error)
	ResolveUsername(ctx context.Context, username string) (domaintypes.Address, bool, error)
	AddFriend(ctx context.Context, addr domaintypes.Address) (domaintypes.Receipt, error)
}

// MessageLedger is the client view of the append-only message log.
type MessageLedger interface {
	Append(
		ctx context.Context,
		recipient domaintypes.Address,
		content string,
		kind domaintypes.MessageKind,
	) (domaintypes.Receipt, error)
	ReadConversation(ctx context.Context, counterpart domaintypes.Address) ([]domaintypes.Message, error)
}

// BlobStore is the external attachment store, addressed by locator.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Metadata(ctx context.Context, locator string) (domaintypes.BlobMetadata, error)
}
