package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/app"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/store"
	"cryptocomm/internal/wallet"
)

const testPassphrase = "Test-Passphrase-1"

// useDownNode points appCtx at a node that answers 503 to everything and
// returns the number of requests it has received so far.
func useDownNode(t *testing.T) func() int64 {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := app.DefaultConfig(t.TempDir())
	cfg.NodeURL = srv.URL
	require.NoError(t, store.NewDeploymentFileStore(cfg.DeploymentPath()).SaveDeployment(domain.Deployment{
		NetworkID:        cfg.NetworkID,
		IdentityRegistry: domain.Address{0x01},
		MessageLedger:    domain.Address{0x02},
	}))

	w, err := app.NewWire(cfg, app.Options{
		Passphrase: testPassphrase,
		Approver:   wallet.AutoApprove{},
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	prev := appCtx
	appCtx = w
	t.Cleanup(func() {
		appCtx = prev
		w.Close()
	})
	return hits.Load
}

func TestRequireConnected_DisconnectedMakesNoRequest(t *testing.T) {
	requests := useDownNode(t)

	_, err := requireConnected(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Zero(t, requests())

	_, err = resolveCounterpart(context.Background(), "bob")
	assert.ErrorIs(t, err, domain.ErrNotConnected, "discovery is gated on the session too")
	assert.Zero(t, requests())
}

func TestRequireConnected_ConnectedChecksNetwork(t *testing.T) {
	requests := useDownNode(t)
	_, _, err := appCtx.Agent.Generate(testPassphrase)
	require.NoError(t, err)
	_, err = appCtx.Session.Connect(context.Background())
	require.NoError(t, err)
	require.Zero(t, requests(), "connecting is local")

	_, err = requireConnected(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransientReadFailure)
	assert.EqualValues(t, 1, requests())
}
