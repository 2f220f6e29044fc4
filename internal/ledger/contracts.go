package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

func contractKey(addr domain.Address) []byte { return []byte("contract:" + addr.Hex()) }
func nonceKey(addr domain.Address) []byte    { return []byte("nonce:" + addr.Hex()) }
func txKey(id domain.TxID) []byte            { return []byte("tx:" + string(id)) }

// contracts tracks deployed contracts and per-deployer nonces in LevelDB.
type contracts struct {
	db *leveldb.DB
}

// get returns the contract at addr, or ErrUnknownContract.
func (c *contracts) get(addr domain.Address) (domain.Contract, error) {
	raw, err := c.db.Get(contractKey(addr), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return domain.Contract{}, fmt.Errorf("%w: %s", domain.ErrUnknownContract, addr.Hex())
	}
	if err != nil {
		return domain.Contract{}, err
	}
	var ct domain.Contract
	if err := json.Unmarshal(raw, &ct); err != nil {
		return domain.Contract{}, fmt.Errorf("decode contract %s: %w", addr.Hex(), err)
	}
	return ct, nil
}

// expect returns the contract at addr if it has the given kind.
func (c *contracts) expect(addr domain.Address, kind domain.ContractKind) (domain.Contract, error) {
	ct, err := c.get(addr)
	if err != nil {
		return domain.Contract{}, err
	}
	if ct.Kind != kind {
		return domain.Contract{}, fmt.Errorf("%w: %s is a %s, not a %s",
			domain.ErrUnknownContract, addr.Hex(), ct.Kind, kind)
	}
	return ct, nil
}

// nonce returns how many contracts deployer has created so far.
func (c *contracts) nonce(deployer domain.Address) (uint64, error) {
	raw, err := c.db.Get(nonceKey(deployer), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt nonce for %s", deployer.Hex())
	}
	return binary.BigEndian.Uint64(raw), nil
}

// deploy stages a new contract into batch and returns it. The address is
// derived from the deployer and its nonce.
func (c *contracts) deploy(
	batch *leveldb.Batch,
	deployer domain.Address,
	params domain.DeployParams,
	now int64,
) (domain.Contract, error) {
	switch params.Kind {
	case domain.ContractIdentityRegistry:
		if params.Registry != nil {
			return domain.Contract{}, fmt.Errorf("%w: identity registry takes no registry", domain.ErrInvalidAddress)
		}
	case domain.ContractMessageLedger:
		if params.Registry == nil {
			return domain.Contract{}, fmt.Errorf("%w: message ledger requires a registry", domain.ErrInvalidAddress)
		}
		if _, err := c.expect(*params.Registry, domain.ContractIdentityRegistry); err != nil {
			return domain.Contract{}, err
		}
	default:
		return domain.Contract{}, fmt.Errorf("%w: unknown contract kind %q", domain.ErrUnknownMethod, params.Kind)
	}

	n, err := c.nonce(deployer)
	if err != nil {
		return domain.Contract{}, err
	}
	ct := domain.Contract{
		Address:    crypto.ContractAddress(deployer, n),
		Kind:       params.Kind,
		Registry:   params.Registry,
		Deployer:   deployer,
		DeployedAt: now,
	}
	raw, err := json.Marshal(ct)
	if err != nil {
		return domain.Contract{}, err
	}
	var next [8]byte
	binary.BigEndian.PutUint64(next[:], n+1)

	batch.Put(contractKey(ct.Address), raw)
	batch.Put(nonceKey(deployer), next[:])
	return ct, nil
}
