package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Options configures a Ledger.
type Options struct {
	Network domain.NetworkID
	Clock   Clock
	Logger  *zap.Logger
}

// Ledger is the node-side state machine. It verifies signed transactions,
// applies them to the registry and message log, and serves reads.
//
// Writes are serialized; reads run concurrently against committed state.
type Ledger struct {
	network   domain.NetworkID
	clock     Clock
	log       *zap.Logger
	db        *leveldb.DB
	registry  *Registry
	contracts contracts
	messages  messageLog

	mu sync.Mutex
}

// Open opens or creates ledger state under dir: a LevelDB chain store at
// dir/chain and the SQLite registry at dir/registry.db.
func Open(dir string, opts Options) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	db, err := leveldb.OpenFile(filepath.Join(dir, "chain"), nil)
	if err != nil {
		return nil, fmt.Errorf("open chain store: %w", err)
	}
	reg, err := OpenRegistry(filepath.Join(dir, "registry.db"), opts.Clock)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{
		network:   opts.Network,
		clock:     opts.Clock,
		log:       opts.Logger,
		db:        db,
		registry:  reg,
		contracts: contracts{db: db},
		messages:  messageLog{db: db},
	}, nil
}

// Close releases both stores.
func (l *Ledger) Close() error {
	return errors.Join(l.registry.Close(), l.db.Close())
}

// Network returns the network id this ledger accepts transactions for.
func (l *Ledger) Network() domain.NetworkID { return l.network }

// Apply verifies and executes stx. A rejected transaction changes no state.
func (l *Ledger) Apply(ctx context.Context, stx domain.SignedTransaction) (domain.Receipt, error) {
	tx := stx.Tx
	if err := crypto.VerifyTransaction(stx); err != nil {
		return domain.Receipt{}, err
	}
	if tx.Network != l.network {
		return domain.Receipt{}, fmt.Errorf("%w: transaction for network %s, node serves %s",
			domain.ErrNetworkMismatch, tx.Network, l.network)
	}
	if tx.ID == "" {
		return domain.Receipt{}, fmt.Errorf("%w: missing transaction id", domain.ErrBadSignature)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	applied, err := l.db.Has(txKey(tx.ID), nil)
	if err != nil {
		return domain.Receipt{}, err
	}
	if applied {
		return domain.Receipt{}, fmt.Errorf("%w: %s", domain.ErrReplayedTransaction, tx.ID)
	}

	batch := new(leveldb.Batch)
	now := l.clock.Now().Unix()
	receipt := domain.Receipt{TxID: tx.ID, Contract: tx.Contract, Timestamp: now}

	switch tx.Method {
	case domain.MethodDeploy:
		var p domain.DeployParams
		if err := decodeParams(tx, &p); err != nil {
			return domain.Receipt{}, err
		}
		ct, err := l.contracts.deploy(batch, tx.From, p, now)
		if err != nil {
			return domain.Receipt{}, err
		}
		receipt.Contract = ct.Address

	case domain.MethodRegister:
		var p domain.RegisterParams
		if err := decodeParams(tx, &p); err != nil {
			return domain.Receipt{}, err
		}
		if _, err := l.contracts.expect(tx.Contract, domain.ContractIdentityRegistry); err != nil {
			return domain.Receipt{}, err
		}
		if _, err := l.registry.Register(ctx, tx.Contract, tx.From, string(p.Username)); err != nil {
			return domain.Receipt{}, err
		}

	case domain.MethodAddFriend:
		var p domain.AddFriendParams
		if err := decodeParams(tx, &p); err != nil {
			return domain.Receipt{}, err
		}
		if _, err := l.contracts.expect(tx.Contract, domain.ContractIdentityRegistry); err != nil {
			return domain.Receipt{}, err
		}
		if err := l.registry.AddFriend(ctx, tx.Contract, tx.From, p.Friend); err != nil {
			return domain.Receipt{}, err
		}

	case domain.MethodAppend:
		var p domain.AppendParams
		if err := decodeParams(tx, &p); err != nil {
			return domain.Receipt{}, err
		}
		msg, err := l.appendMessage(ctx, batch, tx, p, now)
		if err != nil {
			return domain.Receipt{}, err
		}
		receipt.Sequence = msg.Sequence
		receipt.Timestamp = msg.Timestamp

	default:
		return domain.Receipt{}, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, tx.Method)
	}

	raw, err := json.Marshal(receipt)
	if err != nil {
		return domain.Receipt{}, err
	}
	batch.Put(txKey(tx.ID), raw)
	if err := l.db.Write(batch, nil); err != nil {
		return domain.Receipt{}, fmt.Errorf("commit transaction %s: %w", tx.ID, err)
	}

	l.log.Info("transaction applied",
		zap.String("tx", string(tx.ID)),
		zap.String("method", tx.Method),
		zap.Stringer("from", tx.From),
		zap.Stringer("contract", receipt.Contract),
		zap.Uint64("sequence", receipt.Sequence),
	)
	return receipt, nil
}

func (l *Ledger) appendMessage(
	ctx context.Context,
	batch *leveldb.Batch,
	tx domain.Transaction,
	p domain.AppendParams,
	now int64,
) (domain.Message, error) {
	ct, err := l.contracts.expect(tx.Contract, domain.ContractMessageLedger)
	if err != nil {
		return domain.Message{}, err
	}
	if strings.TrimSpace(p.Content) == "" {
		return domain.Message{}, domain.ErrEmptyContent
	}
	if p.Kind == "" {
		p.Kind = domain.KindText
	}
	if !p.Kind.Valid() {
		return domain.Message{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, p.Kind)
	}

	ok, err := l.registry.Exists(ctx, *ct.Registry, tx.From)
	if err != nil {
		return domain.Message{}, err
	}
	if !ok {
		return domain.Message{}, domain.ErrSelfNotRegistered
	}
	ok, err = l.registry.Exists(ctx, *ct.Registry, p.Recipient)
	if err != nil {
		return domain.Message{}, err
	}
	if !ok {
		return domain.Message{}, domain.ErrRecipientNotRegistered
	}

	return l.messages.append(batch, tx.Contract, domain.Message{
		Sender:    tx.From,
		Recipient: p.Recipient,
		Content:   p.Content,
		Kind:      p.Kind,
		TxID:      tx.ID,
	}, now)
}

func decodeParams(tx domain.Transaction, v any) error {
	if err := json.Unmarshal(tx.Params, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedParams, tx.Method, err)
	}
	return nil
}

// Contract returns the contract deployed at addr.
func (l *Ledger) Contract(addr domain.Address) (domain.Contract, error) {
	return l.contracts.get(addr)
}

// Exists reports whether addr is registered in registry.
func (l *Ledger) Exists(ctx context.Context, registry, addr domain.Address) (bool, error) {
	if _, err := l.contracts.expect(registry, domain.ContractIdentityRegistry); err != nil {
		return false, err
	}
	return l.registry.Exists(ctx, registry, addr)
}

// Lookup returns the identity of addr in registry.
func (l *Ledger) Lookup(ctx context.Context, registry, addr domain.Address) (domain.Identity, error) {
	if _, err := l.contracts.expect(registry, domain.ContractIdentityRegistry); err != nil {
		return domain.Identity{}, err
	}
	return l.registry.Lookup(ctx, registry, addr)
}

// ResolveUsername returns the address registered under username.
func (l *Ledger) ResolveUsername(ctx context.Context, registry domain.Address, username string) (domain.Address, bool, error) {
	if _, err := l.contracts.expect(registry, domain.ContractIdentityRegistry); err != nil {
		return domain.Address{}, false, err
	}
	return l.registry.ResolveUsername(ctx, registry, username)
}

// Conversation returns the messages exchanged between a and b on ledger,
// in the order they were appended.
func (l *Ledger) Conversation(ledger, a, b domain.Address) ([]domain.Message, error) {
	if _, err := l.contracts.expect(ledger, domain.ContractMessageLedger); err != nil {
		return nil, err
	}
	return l.messages.conversation(ledger, a, b)
}

// Verify walks the hash chain of ledger.
func (l *Ledger) Verify(ledger domain.Address) (domain.ChainReport, error) {
	if _, err := l.contracts.expect(ledger, domain.ContractMessageLedger); err != nil {
		return domain.ChainReport{}, err
	}
	return l.messages.verify(ledger)
}
