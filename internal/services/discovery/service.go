package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Service answers "who is this" questions over the identity registry.
type Service struct {
	session  domain.Session
	registry domain.IdentityRegistry
	log      *zap.Logger
}

// New returns a discovery service over registry.
func New(session domain.Session, registry domain.IdentityRegistry, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{session: session, registry: registry, log: log}
}

// PlaceholderName is shown for a friend whose record could not be read.
func PlaceholderName(i int) string { return fmt.Sprintf("Friend %d", i+1) }

// ListFriends resolves the session identity's friends to display names, in
// the order they were added. A friend whose lookup fails is listed with a
// placeholder name; only failure to read the caller's own record is an
// error.
func (s *Service) ListFriends(ctx context.Context) ([]domain.Friend, error) {
	self, err := s.session.RequireAddress()
	if err != nil {
		return nil, err
	}
	me, err := s.registry.Lookup(ctx, self)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Friend, len(me.Friends))
	var wg sync.WaitGroup
	for i, addr := range me.Friends {
		wg.Add(1)
		go func(i int, addr domain.Address) {
			defer wg.Done()
			id, err := s.registry.Lookup(ctx, addr)
			if err != nil {
				s.log.Warn("friend lookup failed",
					zap.Stringer("friend", addr),
					zap.Error(err),
				)
				out[i] = domain.Friend{Address: addr, Username: domain.Username(PlaceholderName(i)), Placeholder: true}
				return
			}
			out[i] = domain.Friend{Address: addr, Username: id.Username}
		}(i, addr)
	}
	wg.Wait()
	return out, nil
}

// Search finds one identity by exact address or exact username. found is
// false when nothing matches; err is reserved for failed requests.
func (s *Service) Search(ctx context.Context, query string) (domain.Friend, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Friend{}, false, nil
	}

	if crypto.IsAddress(query) {
		addr, err := crypto.ParseAddress(query)
		if err != nil {
			return domain.Friend{}, false, err
		}
		id, err := s.registry.Lookup(ctx, addr)
		if errors.Is(err, domain.ErrNotRegistered) {
			return domain.Friend{}, false, nil
		}
		if err != nil {
			return domain.Friend{}, false, err
		}
		return domain.Friend{Address: id.Address, Username: id.Username}, true, nil
	}

	addr, found, err := s.registry.ResolveUsername(ctx, query)
	if err != nil || !found {
		return domain.Friend{}, false, err
	}
	name, err := domain.NormalizeUsername(query)
	if err != nil {
		return domain.Friend{}, false, nil
	}
	return domain.Friend{Address: addr, Username: name}, true, nil
}

// Filter returns the friends whose username or address contains query,
// ignoring case. It never touches the ledger.
func Filter(friends []domain.Friend, query string) []domain.Friend {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return friends
	}
	out := make([]domain.Friend, 0, len(friends))
	for _, f := range friends {
		if strings.Contains(fold.String(string(f.Username)), q) ||
			strings.Contains(strings.ToLower(f.Address.Hex()), q) {
			out = append(out, f)
		}
	}
	return out
}
