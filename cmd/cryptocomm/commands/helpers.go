package commands

import (
	"context"
	"fmt"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// requireConnected restores the previously authorized address, then checks
// the node's network. A disconnected user gets ErrNotConnected without any
// request reaching the node. It never prompts; see connect.
func requireConnected(ctx context.Context) (domain.Address, error) {
	if err := appCtx.RequireDeployment(); err != nil {
		return domain.Address{}, err
	}
	addr, err := appCtx.Session.CurrentAddress()
	if err != nil {
		return domain.Address{}, err
	}
	if addr == nil {
		return domain.Address{}, fmt.Errorf("%w (run: cryptocomm connect)", domain.ErrNotConnected)
	}
	if err := appCtx.CheckNetwork(ctx); err != nil {
		return domain.Address{}, err
	}
	return *addr, nil
}

// resolveCounterpart accepts an address or an exact username.
func resolveCounterpart(ctx context.Context, arg string) (domain.Friend, error) {
	if crypto.IsAddress(arg) {
		addr, err := crypto.ParseAddress(arg)
		if err != nil {
			return domain.Friend{}, err
		}
		f, found, err := appCtx.Discovery.Search(ctx, arg)
		if err != nil {
			return domain.Friend{}, err
		}
		if !found {
			return domain.Friend{Address: addr}, nil
		}
		return f, nil
	}
	f, found, err := appCtx.Discovery.Search(ctx, arg)
	if err != nil {
		return domain.Friend{}, err
	}
	if !found {
		return domain.Friend{}, fmt.Errorf("no user named %q", arg)
	}
	return f, nil
}

func displayName(f domain.Friend) string {
	if f.Username == "" {
		return domain.ShortAddress(f.Address)
	}
	return fmt.Sprintf("%s (%s)", f.Username, domain.ShortAddress(f.Address))
}
