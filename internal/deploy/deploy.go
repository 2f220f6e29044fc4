package deploy

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Bootstrap publishes an identity registry and then a message ledger bound
// to it, and returns the addresses for client configuration.
//
// The node's network id is read first and must equal network.
func Bootstrap(
	ctx context.Context,
	key *ecdsa.PrivateKey,
	client domain.LedgerClient,
	network domain.NetworkID,
	log *zap.Logger,
) (domain.Deployment, error) {
	if log == nil {
		log = zap.NewNop()
	}
	remote, err := client.NetworkID(ctx)
	if err != nil {
		return domain.Deployment{}, fmt.Errorf("query node network: %w", err)
	}
	if remote != network {
		return domain.Deployment{}, fmt.Errorf("%w: node serves %s, deploying for %s",
			domain.ErrNetworkMismatch, remote, network)
	}

	log.Info("deploying identity registry")
	reg, err := deployContract(ctx, key, client, network, domain.DeployParams{
		Kind: domain.ContractIdentityRegistry,
	})
	if err != nil {
		return domain.Deployment{}, fmt.Errorf("deploy identity registry: %w", err)
	}
	log.Info("identity registry deployed", zap.Stringer("address", reg.Contract))

	ledger, err := deployContract(ctx, key, client, network, domain.DeployParams{
		Kind:     domain.ContractMessageLedger,
		Registry: &reg.Contract,
	})
	if err != nil {
		return domain.Deployment{}, fmt.Errorf("deploy message ledger: %w", err)
	}
	log.Info("message ledger deployed", zap.Stringer("address", ledger.Contract))

	return domain.Deployment{
		NetworkID:        network,
		IdentityRegistry: reg.Contract,
		MessageLedger:    ledger.Contract,
		Deployer:         crypto.AddressOf(key),
		DeployedAt:       ledger.Timestamp,
	}, nil
}

func deployContract(
	ctx context.Context,
	key *ecdsa.PrivateKey,
	client domain.LedgerClient,
	network domain.NetworkID,
	params domain.DeployParams,
) (domain.Receipt, error) {
	tx, err := crypto.NewTransaction(domain.Address{}, domain.MethodDeploy, params)
	if err != nil {
		return domain.Receipt{}, err
	}
	tx.Network = network
	stx, err := crypto.SignTransaction(key, tx)
	if err != nil {
		return domain.Receipt{}, err
	}
	return client.Submit(ctx, stx)
}
