package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Service is the client's signing session over a domain.SigningAgent.
//
// It tracks which address is connected and hands a signing capability to the
// registry and ledger facades. Agent events are applied as they arrive:
//   - an account change replaces the address, or disconnects if there is none;
//   - a network change invalidates the whole session, since contract
//     addresses and ledger state are network-scoped.
type Service struct {
	agent domain.SigningAgent
	log   *zap.Logger

	mu        sync.RWMutex
	state     domain.SessionState
	listeners map[int]listener
	nextID    int

	unsubscribe func()
}

type listener struct {
	onAccount func(*domain.Address)
	onNetwork func(domain.NetworkID)
}

// New returns a disconnected session bound to agent. Callers must Close it.
func New(agent domain.SigningAgent, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		agent:     agent,
		log:       log,
		state:     domain.SessionState{Network: agent.Network()},
		listeners: make(map[int]listener),
	}
	s.unsubscribe = agent.Subscribe(s.handleEvent)
	return s
}

var _ domain.Session = (*Service)(nil)

// Connect asks the agent for authorization and records the address.
func (s *Service) Connect(ctx context.Context) (domain.Address, error) {
	addr, err := s.agent.RequestAuthorization(ctx)
	if err != nil {
		return domain.Address{}, err
	}
	s.setAddress(&addr)
	s.log.Info("session connected", zap.Stringer("address", addr))
	return addr, nil
}

// CurrentAddress returns the connected address, restoring a previous
// authorization from the agent without prompting. It returns nil if the
// agent has never authorized an address.
func (s *Service) CurrentAddress() (*domain.Address, error) {
	s.mu.RLock()
	if s.state.Connected {
		addr := *s.state.Address
		s.mu.RUnlock()
		return &addr, nil
	}
	s.mu.RUnlock()

	addrs, err := s.agent.AuthorizedAddresses()
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, nil
	}
	addr := addrs[0]
	s.setAddress(&addr)
	return &addr, nil
}

// Subscribe registers callbacks for account and network changes. Either may
// be nil. Callbacks run on the agent's event goroutine, after the session
// has applied the change.
func (s *Service) Subscribe(onAccount func(*domain.Address), onNetwork func(domain.NetworkID)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener{onAccount: onAccount, onNetwork: onNetwork}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Disconnect drops the local connection. The agent keeps its authorization.
func (s *Service) Disconnect() {
	s.setAddress(nil)
}

// State returns a snapshot of the session.
func (s *Service) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Address != nil {
		addr := *st.Address
		st.Address = &addr
	}
	return st
}

// RequireAddress returns the connected address or ErrNotConnected.
func (s *Service) RequireAddress() (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Connected || s.state.Address == nil {
		return domain.Address{}, domain.ErrNotConnected
	}
	return *s.state.Address, nil
}

// Network returns the network the session is bound to.
func (s *Service) Network() domain.NetworkID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Network
}

// SignTransaction stamps tx with the session address and network and has
// the agent sign it.
func (s *Service) SignTransaction(tx domain.Transaction) (domain.SignedTransaction, error) {
	addr, err := s.RequireAddress()
	if err != nil {
		return domain.SignedTransaction{}, err
	}
	tx.From = addr
	tx.Network = s.Network()

	h, err := crypto.TxHash(tx)
	if err != nil {
		return domain.SignedTransaction{}, err
	}
	sig, err := s.agent.SignHash(addr, h)
	if err != nil {
		return domain.SignedTransaction{}, err
	}
	return domain.SignedTransaction{Tx: tx, Signature: sig}, nil
}

// VerifyNetwork compares the node's network with the session's. On mismatch
// the session is reset and ErrNetworkMismatch is returned.
func (s *Service) VerifyNetwork(remote domain.NetworkID) error {
	local := s.Network()
	if remote == local {
		return nil
	}
	s.Disconnect()
	s.log.Warn("network mismatch",
		zap.Stringer("session", local),
		zap.Stringer("node", remote),
	)
	return fmt.Errorf("%w: node serves %s, session is on %s", domain.ErrNetworkMismatch, remote, local)
}

// Close detaches the session from the agent.
func (s *Service) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}

func (s *Service) setAddress(addr *domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr == nil {
		s.state.Address = nil
		s.state.Connected = false
		return
	}
	a := *addr
	s.state.Address = &a
	s.state.Connected = true
}

func (s *Service) snapshotListeners() []listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func (s *Service) handleEvent(ev domain.AgentEvent) {
	switch ev.Type {
	case domain.AccountChanged:
		s.setAddress(ev.Account)
		if ev.Account == nil {
			s.log.Info("session disconnected by agent")
		} else {
			s.log.Info("session account changed", zap.Stringer("address", *ev.Account))
		}
		for _, l := range s.snapshotListeners() {
			if l.onAccount != nil {
				l.onAccount(ev.Account)
			}
		}

	case domain.NetworkChanged:
		s.mu.Lock()
		s.state = domain.SessionState{Network: ev.Network}
		s.mu.Unlock()
		s.log.Info("session invalidated by network change", zap.Stringer("network", ev.Network))
		for _, l := range s.snapshotListeners() {
			if l.onNetwork != nil {
				l.onNetwork(ev.Network)
			}
		}
	}
}
