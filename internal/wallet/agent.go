package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Agent is the local signing agent. It holds one secp256k1 key in an
// encrypted keystore and remembers which addresses the user has authorized
// and which network it targets.
//
// Events are delivered on a single goroutine in the order they occurred,
// never from inside the call that caused them.
type Agent struct {
	keys       domain.KeyStore
	state      domain.AgentStateStore
	approver   Approver
	passphrase string
	log        *zap.Logger

	mu         sync.Mutex
	network    domain.NetworkID
	authorized []domain.Address
	key        *ecdsa.PrivateKey
	subs       map[int]func(domain.AgentEvent)
	nextSub    int

	events    chan domain.AgentEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Config configures an Agent.
type Config struct {
	Keys       domain.KeyStore
	State      domain.AgentStateStore
	Approver   Approver
	Passphrase string
	// Network is used when no agent state has been saved yet.
	Network domain.NetworkID
	Logger  *zap.Logger
}

// New loads persisted agent state and starts event delivery. Callers must
// Close the agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Approver == nil {
		cfg.Approver = AutoApprove{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	a := &Agent{
		keys:       cfg.Keys,
		state:      cfg.State,
		approver:   cfg.Approver,
		passphrase: cfg.Passphrase,
		log:        cfg.Logger,
		network:    cfg.Network,
		subs:       make(map[int]func(domain.AgentEvent)),
		events:     make(chan domain.AgentEvent, 16),
		done:       make(chan struct{}),
	}

	st, ok, err := cfg.State.LoadAgentState()
	if err != nil {
		return nil, fmt.Errorf("load agent state: %w", err)
	}
	if ok {
		a.network = st.Network
		a.authorized = st.Authorized
	}

	a.wg.Add(1)
	go a.dispatch()
	return a, nil
}

var _ domain.SigningAgent = (*Agent)(nil)

// Generate creates and stores a new signing key under passphrase.
func (a *Agent) Generate(passphrase string) (domain.Address, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Address{}, "", ErrWeakPassphrase
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return domain.Address{}, "", err
	}
	if err := a.keys.SaveKey(passphrase, key); err != nil {
		return domain.Address{}, "", err
	}

	a.mu.Lock()
	a.key = key
	a.passphrase = passphrase
	a.mu.Unlock()

	return crypto.AddressOf(key), domain.Fingerprint(crypto.FingerprintKey(key)), nil
}

// Fingerprint returns the fingerprint of the local key's public half.
func (a *Agent) Fingerprint() (domain.Fingerprint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key, err := a.loadKeyLocked()
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.FingerprintKey(key)), nil
}

// RequestAuthorization unlocks the key, asks the approver, and records the
// address as authorized. The caller learns the address from the return
// value; no event is emitted. If ctx ends while the approver is waiting,
// ctx.Err() is returned instead of ErrUserRejected.
func (a *Agent) RequestAuthorization(ctx context.Context) (domain.Address, error) {
	a.mu.Lock()
	key, err := a.loadKeyLocked()
	network := a.network
	a.mu.Unlock()
	if err != nil {
		return domain.Address{}, err
	}

	addr := crypto.AddressOf(key)
	ok, err := a.approver.Approve(ctx, addr, network)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// An abandoned prompt is not a refusal.
		return domain.Address{}, ctxErr
	}
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
	}
	if !ok {
		return domain.Address{}, domain.ErrUserRejected
	}

	a.mu.Lock()
	if !slices.Contains(a.authorized, addr) {
		a.authorized = append(a.authorized, addr)
	}
	err = a.saveLocked()
	a.mu.Unlock()
	if err != nil {
		return domain.Address{}, err
	}

	a.log.Debug("account authorized", zap.Stringer("account", addr))
	return addr, nil
}

// AuthorizedAddresses returns previously authorized addresses without
// prompting.
func (a *Agent) AuthorizedAddresses() ([]domain.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.authorized), nil
}

// SignHash signs hash with the key behind account, which must be authorized.
func (a *Agent) SignHash(account domain.Address, hash domain.Hash) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !slices.Contains(a.authorized, account) {
		return nil, fmt.Errorf("%w: %s is not authorized", domain.ErrNotConnected, account.Hex())
	}
	key, err := a.loadKeyLocked()
	if err != nil {
		return nil, err
	}
	if crypto.AddressOf(key) != account {
		return nil, fmt.Errorf("%w: no key for %s", domain.ErrAgentUnavailable, account.Hex())
	}
	return crypto.SignHash(key, hash)
}

// Network returns the network the agent currently targets.
func (a *Agent) Network() domain.NetworkID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.network
}

// SwitchNetwork retargets the agent and emits NetworkChanged. Switching to
// the current network is a no-op.
func (a *Agent) SwitchNetwork(network domain.NetworkID) error {
	a.mu.Lock()
	if a.network == network {
		a.mu.Unlock()
		return nil
	}
	a.network = network
	err := a.saveLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}

	a.log.Info("network switched", zap.Stringer("network", network))
	a.emit(domain.AgentEvent{Type: domain.NetworkChanged, Network: network})
	return nil
}

// SwitchAccount makes account the active account and emits AccountChanged.
// A nil account revokes every authorization, which subscribers observe as a
// disconnect. Only the keystore's own address can be activated.
func (a *Agent) SwitchAccount(account *domain.Address) error {
	a.mu.Lock()
	if account == nil {
		a.authorized = nil
	} else {
		key, err := a.loadKeyLocked()
		if err != nil {
			a.mu.Unlock()
			return err
		}
		if crypto.AddressOf(key) != *account {
			a.mu.Unlock()
			return fmt.Errorf("%w: no key for %s", domain.ErrAgentUnavailable, account.Hex())
		}
		a.authorized = []domain.Address{*account}
	}
	network := a.network
	err := a.saveLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.emit(domain.AgentEvent{Type: domain.AccountChanged, Account: account, Network: network})
	return nil
}

// Revoke is SwitchAccount(nil).
func (a *Agent) Revoke() error { return a.SwitchAccount(nil) }

// Subscribe registers handler for agent events.
func (a *Agent) Subscribe(handler func(domain.AgentEvent)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = handler
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// Close stops event delivery. Pending events are dropped.
func (a *Agent) Close() error {
	a.closeOnce.Do(func() { close(a.done) })
	a.wg.Wait()
	return nil
}

func (a *Agent) emit(ev domain.AgentEvent) {
	select {
	case a.events <- ev:
	case <-a.done:
	}
}

func (a *Agent) dispatch() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case ev := <-a.events:
			a.mu.Lock()
			handlers := make([]func(domain.AgentEvent), 0, len(a.subs))
			for _, h := range a.subs {
				handlers = append(handlers, h)
			}
			a.mu.Unlock()
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

func (a *Agent) loadKeyLocked() (*ecdsa.PrivateKey, error) {
	if a.key != nil {
		return a.key, nil
	}
	key, err := a.keys.LoadKey(a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAgentUnavailable, err)
	}
	a.key = key
	return key, nil
}

func (a *Agent) saveLocked() error {
	return a.state.SaveAgentState(domain.AgentState{
		Network:    a.network,
		Authorized: slices.Clone(a.authorized),
	})
}
