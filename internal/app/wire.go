package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cryptocomm/internal/blob"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/logging"
	"cryptocomm/internal/rpc"
	"cryptocomm/internal/services/conversation"
	"cryptocomm/internal/services/discovery"
	messagesvc "cryptocomm/internal/services/message"
	registrysvc "cryptocomm/internal/services/registry"
	sessionsvc "cryptocomm/internal/services/session"
	"cryptocomm/internal/store"
	"cryptocomm/internal/wallet"
)

// Options are per-invocation inputs that do not belong in the config file.
type Options struct {
	Passphrase string
	Approver   wallet.Approver
	// Logger overrides the logger built from Config.Log.
	Logger *zap.Logger
}

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config Config
	Log    *zap.Logger
	HTTP   *http.Client

	Keys        *store.KeyFileStore
	Deployments *store.DeploymentFileStore
	Agent       *wallet.Agent
	Session     *sessionsvc.Service
	Node        *rpc.Client
	Blobs       *blob.Client

	// Deployment is zero until a deployment file exists; the services below
	// are nil in that case. See RequireDeployment.
	Deployment   domain.Deployment
	Registry     *registrysvc.Service
	Messages     *messagesvc.Service
	Discovery    *discovery.Service
	Conversation *conversation.View

	hasDeployment bool
	unsubscribe   func()
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, opts Options) (*Wire, error) {
	log := opts.Logger
	if log == nil {
		var err error
		log, err = logging.New(cfg.Log.Level, cfg.Log.Encoding)
		if err != nil {
			return nil, err
		}
	}

	// File-based stores
	keys := store.NewKeyFileStore(cfg.Home)
	agentState := store.NewAgentFileStore(cfg.Home)
	deployments := store.NewDeploymentFileStore(cfg.DeploymentPath())

	agent, err := wallet.New(wallet.Config{
		Keys:       keys,
		State:      agentState,
		Approver:   opts.Approver,
		Passphrase: opts.Passphrase,
		Network:    cfg.NetworkID,
		Logger:     log.Named("wallet"),
	})
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	node := rpc.New(cfg.NodeURL, httpClient)
	blobs := blob.New(cfg.Blob.UploadURL, cfg.Blob.GatewayURL, cfg.Blob.APIKey, httpClient)
	session := sessionsvc.New(agent, log.Named("session"))

	w := &Wire{
		Config:      cfg,
		Log:         log,
		HTTP:        httpClient,
		Keys:        keys,
		Deployments: deployments,
		Agent:       agent,
		Session:     session,
		Node:        node,
		Blobs:       blobs,
	}

	d, ok, err := deployments.LoadDeployment()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("load deployment: %w", err)
	}
	if ok {
		w.Deployment = d
		w.hasDeployment = true
		w.Registry = registrysvc.New(session, node, d.IdentityRegistry, log.Named("registry"))
		w.Messages = messagesvc.New(session, node, d.MessageLedger, blobs, log.Named("ledger"))
		w.Discovery = discovery.New(session, w.Registry, log.Named("discovery"))
		w.Conversation = conversation.New(session, w.Messages, blobs, log.Named("conversation"))

		// Anything derived from the old account or network is stale.
		w.unsubscribe = session.Subscribe(
			func(*domain.Address) { w.Conversation.Close() },
			func(domain.NetworkID) { w.Conversation.Close() },
		)
	}
	return w, nil
}

// RequireDeployment fails if no contract addresses are configured.
func (w *Wire) RequireDeployment() error {
	if !w.hasDeployment {
		return fmt.Errorf("no deployment at %s: run: cryptocomm deploy, or set deployment_file", w.Deployments.Path())
	}
	return nil
}

// CheckNetwork confirms that the node, the deployment and the session agree
// on the network. A mismatch resets the session.
func (w *Wire) CheckNetwork(ctx context.Context) error {
	remote, err := w.Node.NetworkID(ctx)
	if err != nil {
		return err
	}
	if err := w.Session.VerifyNetwork(remote); err != nil {
		return err
	}
	if w.hasDeployment && w.Deployment.NetworkID != remote {
		w.Session.Disconnect()
		return fmt.Errorf("%w: deployment is for network %s, node serves %s",
			domain.ErrNetworkMismatch, w.Deployment.NetworkID, remote)
	}
	return nil
}

// Close releases the session and agent and flushes the logger.
func (w *Wire) Close() error {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	w.Session.Close()
	w.Agent.Close()
	_ = w.Log.Sync()
	return nil
}
