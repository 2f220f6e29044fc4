package session_test

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/services/session"
)

// fakeAgent delivers events synchronously.
type fakeAgent struct {
	mu         sync.Mutex
	key        *ecdsa.PrivateKey
	network    domain.NetworkID
	authorized []domain.Address
	reject     bool
	prompts    int
	handlers   map[int]func(domain.AgentEvent)
	next       int
}

func newFakeAgent(t *testing.T) *fakeAgent {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &fakeAgent{key: key, network: 5, handlers: map[int]func(domain.AgentEvent){}}
}

func (a *fakeAgent) RequestAuthorization(context.Context) (domain.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts++
	if a.reject {
		return domain.Address{}, domain.ErrUserRejected
	}
	addr := crypto.AddressOf(a.key)
	a.authorized = []domain.Address{addr}
	return addr, nil
}

func (a *fakeAgent) AuthorizedAddresses() ([]domain.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Address(nil), a.authorized...), nil
}

func (a *fakeAgent) SignHash(account domain.Address, hash domain.Hash) ([]byte, error) {
	return crypto.SignHash(a.key, hash)
}

func (a *fakeAgent) Network() domain.NetworkID { return a.network }

func (a *fakeAgent) Subscribe(h func(domain.AgentEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	a.handlers[id] = h
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers, id)
	}
}

func (a *fakeAgent) emit(ev domain.AgentEvent) {
	a.mu.Lock()
	hs := make([]func(domain.AgentEvent), 0, len(a.handlers))
	for _, h := range a.handlers {
		hs = append(hs, h)
	}
	a.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

func newSession(t *testing.T, agent *fakeAgent) *session.Service {
	s := session.New(agent, zaptest.NewLogger(t))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSession_RequireAddressWhenDisconnected(t *testing.T) {
	s := newSession(t, newFakeAgent(t))
	_, err := s.RequireAddress()
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = s.SignTransaction(domain.Transaction{})
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestSession_Connect(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)

	addr, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, crypto.AddressOf(agent.key), addr)

	st := s.State()
	assert.True(t, st.Connected)
	require.NotNil(t, st.Address)
	assert.Equal(t, addr, *st.Address)
	assert.Equal(t, domain.NetworkID(5), st.Network)
}

func TestSession_ConnectRejected(t *testing.T) {
	agent := newFakeAgent(t)
	agent.reject = true
	s := newSession(t, agent)

	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrUserRejected)
	assert.False(t, s.State().Connected)
}

func TestSession_CurrentAddressDoesNotPrompt(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)

	addr, err := s.CurrentAddress()
	require.NoError(t, err)
	assert.Nil(t, addr)

	agent.authorized = []domain.Address{crypto.AddressOf(agent.key)}
	addr, err = s.CurrentAddress()
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, crypto.AddressOf(agent.key), *addr)
	assert.Zero(t, agent.prompts)
	assert.True(t, s.State().Connected)
}

func TestSession_AccountEvents(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	var seen []*domain.Address
	unsubscribe := s.Subscribe(func(a *domain.Address) { seen = append(seen, a) }, nil)

	agent.emit(domain.AgentEvent{Type: domain.AccountChanged})
	assert.False(t, s.State().Connected)
	_, err = s.RequireAddress()
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	other := crypto.AddressOf(newFakeAgent(t).key)
	agent.emit(domain.AgentEvent{Type: domain.AccountChanged, Account: &other})
	got, err := s.RequireAddress()
	require.NoError(t, err)
	assert.Equal(t, other, got)

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])
	assert.Equal(t, other, *seen[1])

	unsubscribe()
	agent.emit(domain.AgentEvent{Type: domain.AccountChanged})
	assert.Len(t, seen, 2)
}

func TestSession_NetworkChangeInvalidates(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	var network domain.NetworkID
	s.Subscribe(nil, func(n domain.NetworkID) { network = n })

	agent.emit(domain.AgentEvent{Type: domain.NetworkChanged, Network: 99})
	assert.Equal(t, domain.NetworkID(99), network)
	assert.Equal(t, domain.SessionState{Network: 99}, s.State())
}

func TestSession_VerifyNetwork(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.VerifyNetwork(5))
	assert.True(t, s.State().Connected)

	err = s.VerifyNetwork(6)
	assert.ErrorIs(t, err, domain.ErrNetworkMismatch)
	assert.False(t, s.State().Connected)
}

func TestSession_SignTransaction(t *testing.T) {
	agent := newFakeAgent(t)
	s := newSession(t, agent)
	addr, err := s.Connect(context.Background())
	require.NoError(t, err)

	tx, err := crypto.NewTransaction(domain.Address{1}, domain.MethodRegister, domain.RegisterParams{Username: "alice"})
	require.NoError(t, err)
	stx, err := s.SignTransaction(tx)
	require.NoError(t, err)

	assert.Equal(t, addr, stx.Tx.From)
	assert.Equal(t, domain.NetworkID(5), stx.Tx.Network)
	assert.NoError(t, crypto.VerifyTransaction(stx))
}
