package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Service is the client view of one identity registry contract.
//
// Every call requires a connected session and fails with ErrNotConnected
// before any request reaches the node.
type Service struct {
	session  domain.Session
	client   domain.LedgerClient
	contract domain.Address
	log      *zap.Logger
}

// New returns a registry facade for the contract at addr.
func New(session domain.Session, client domain.LedgerClient, addr domain.Address, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{session: session, client: client, contract: addr, log: log}
}

var _ domain.IdentityRegistry = (*Service)(nil)

// Register binds username to the session address.
func (s *Service) Register(ctx context.Context, username string) (domain.Receipt, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return domain.Receipt{}, err
	}
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Receipt{}, err
	}
	r, err := s.submit(ctx, domain.MethodRegister, domain.RegisterParams{Username: name})
	if err != nil {
		return domain.Receipt{}, err
	}
	s.log.Info("registered", zap.String("username", string(name)))
	return r, nil
}

// Exists reports whether addr has an identity. It fails only when the
// session is disconnected or the read could not complete.
func (s *Service) Exists(ctx context.Context, addr domain.Address) (bool, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return false, err
	}
	return s.client.Exists(ctx, s.contract, addr)
}

// Lookup returns the identity of addr or ErrNotRegistered.
func (s *Service) Lookup(ctx context.Context, addr domain.Address) (domain.Identity, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return domain.Identity{}, err
	}
	return s.client.Lookup(ctx, s.contract, addr)
}

// Self returns the identity of the session address.
func (s *Service) Self(ctx context.Context) (domain.Identity, error) {
	addr, err := s.session.RequireAddress()
	if err != nil {
		return domain.Identity{}, err
	}
	return s.client.Lookup(ctx, s.contract, addr)
}

// ResolveUsername returns the address registered as username. A name that
// is not registered, or could never be registered, reports found=false.
func (s *Service) ResolveUsername(ctx context.Context, username string) (domain.Address, bool, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return domain.Address{}, false, err
	}
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Address{}, false, nil
	}
	return s.client.ResolveUsername(ctx, s.contract, name)
}

// AddFriend appends addr to the session identity's friend list.
func (s *Service) AddFriend(ctx context.Context, addr domain.Address) (domain.Receipt, error) {
	self, err := s.session.RequireAddress()
	if err != nil {
		return domain.Receipt{}, err
	}
	if addr == self {
		return domain.Receipt{}, fmt.Errorf("%w: cannot befriend yourself", domain.ErrInvalidAddress)
	}
	r, err := s.submit(ctx, domain.MethodAddFriend, domain.AddFriendParams{Friend: addr})
	if err != nil {
		return domain.Receipt{}, err
	}
	s.log.Info("friend added", zap.Stringer("friend", addr))
	return r, nil
}

func (s *Service) submit(ctx context.Context, method string, params any) (domain.Receipt, error) {
	tx, err := crypto.NewTransaction(s.contract, method, params)
	if err != nil {
		return domain.Receipt{}, err
	}
	stx, err := s.session.SignTransaction(tx)
	if err != nil {
		return domain.Receipt{}, err
	}
	return s.client.Submit(ctx, stx)
}
