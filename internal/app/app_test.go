package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/app"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/store"
	"cryptocomm/internal/testnet"
	"cryptocomm/internal/wallet"
)

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(home), cfg)
	assert.Equal(t, filepath.Join(home, "deployment.json"), cfg.DeploymentPath())
}

func TestLoadConfig_OverridesFromYAML(t *testing.T) {
	home := t.TempDir()
	yml := `
node_url: http://node.example:9000
network_id: 5
deployment_file: /etc/cryptocomm/deployment.json
blob:
  api_key: k
log:
  level: debug
http:
  timeout: 3s
`
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFile), []byte(yml), 0o600))

	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "http://node.example:9000", cfg.NodeURL)
	assert.Equal(t, domain.NetworkID(5), cfg.NetworkID)
	assert.Equal(t, "/etc/cryptocomm/deployment.json", cfg.DeploymentPath())
	assert.Equal(t, "k", cfg.Blob.APIKey)
	assert.Equal(t, "https://gateway.lighthouse.storage", cfg.Blob.GatewayURL, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := app.DefaultConfig(filepath.Join(t.TempDir(), "nested"))
	cfg.NetworkID = 99
	require.NoError(t, app.SaveConfig(cfg))

	got, err := app.LoadConfig(cfg.Home)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func newWire(t *testing.T, cfg app.Config) *app.Wire {
	w, err := app.NewWire(cfg, app.Options{
		Passphrase: testnet.Passphrase,
		Approver:   wallet.AutoApprove{},
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNewWire_WithoutDeployment(t *testing.T) {
	w := newWire(t, app.DefaultConfig(t.TempDir()))
	assert.Error(t, w.RequireDeployment())
	assert.Nil(t, w.Registry)
}

func TestNewWire_EndToEnd(t *testing.T) {
	net := testnet.Start(t)
	cfg := app.DefaultConfig(t.TempDir())
	cfg.NodeURL = net.Server.URL
	cfg.NetworkID = testnet.ID
	require.NoError(t, store.NewDeploymentFileStore(cfg.DeploymentPath()).SaveDeployment(net.Deployment))

	w := newWire(t, cfg)
	require.NoError(t, w.RequireDeployment())
	_, _, err := w.Agent.Generate(testnet.Passphrase)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.CheckNetwork(ctx))
	_, err = w.Session.Connect(ctx)
	require.NoError(t, err)
	_, err = w.Registry.Register(ctx, "alice")
	require.NoError(t, err)

	me, err := w.Registry.Self(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Username("alice"), me.Username)

	require.NoError(t, w.Agent.SwitchNetwork(testnet.ID+1))
	require.Eventually(t, func() bool {
		return w.Session.Network() == testnet.ID+1
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, w.CheckNetwork(ctx), domain.ErrNetworkMismatch)
	assert.False(t, w.Session.State().Connected)
}
