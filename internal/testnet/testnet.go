// Package testnet runs an in-process ledger node for tests.
package testnet

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/deploy"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/ledger"
	"cryptocomm/internal/node"
	"cryptocomm/internal/rpc"
	"cryptocomm/internal/services/session"
	"cryptocomm/internal/store"
	"cryptocomm/internal/wallet"
)

// ID is the network id every test node serves.
const ID domain.NetworkID = 31337

// Passphrase satisfies the wallet's passphrase policy.
const Passphrase = "Test-Passphrase-1"

// Network is a running node with both contracts deployed.
type Network struct {
	Ledger     *ledger.Ledger
	Server     *httptest.Server
	Client     *rpc.Client
	Deployment domain.Deployment
}

// Start opens a ledger under a temp dir, serves it, and deploys contracts.
// Everything is torn down when the test ends.
func Start(t testing.TB) *Network {
	t.Helper()
	l, err := ledger.Open(t.TempDir(), ledger.Options{Network: ID, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	srv := httptest.NewServer(node.New(l, zaptest.NewLogger(t)).Handler())
	t.Cleanup(srv.Close)

	client := rpc.New(srv.URL, srv.Client())
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	d, err := deploy.Bootstrap(context.Background(), key, client, ID, zaptest.NewLogger(t))
	require.NoError(t, err)

	return &Network{Ledger: l, Server: srv, Client: client, Deployment: d}
}

// User is a wallet and signing session for one party.
type User struct {
	Agent   *wallet.Agent
	Session *session.Service
	Address domain.Address
}

// NewUser creates a wallet with a fresh key and a session on the test
// network. If connect is set, the session is connected.
func NewUser(t testing.TB, connect bool) *User {
	t.Helper()
	dir := t.TempDir()
	agent, err := wallet.New(wallet.Config{
		Keys:       store.NewKeyFileStore(dir).WithScryptN(1 << 10),
		State:      store.NewAgentFileStore(dir),
		Approver:   wallet.AutoApprove{},
		Passphrase: Passphrase,
		Network:    ID,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { agent.Close() })

	addr, _, err := agent.Generate(Passphrase)
	require.NoError(t, err)

	s := session.New(agent, zaptest.NewLogger(t))
	t.Cleanup(func() { s.Close() })

	if connect {
		_, err := s.Connect(context.Background())
		require.NoError(t, err)
	}
	return &User{Agent: agent, Session: s, Address: addr}
}
