package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"cryptocomm/internal/app"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/wallet"
)

var (
	home       string
	passphrase string
	appCtx     *app.Wire

	nodeURL        string
	networkID      uint64
	deploymentFile string
	assumeYes      bool
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cryptocomm",
		Short:        "Ledger-backed identity registry and messaging CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".cryptocomm")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("node") {
				cfg.NodeURL = nodeURL
			}
			if cmd.Flags().Changed("network") {
				cfg.NetworkID = domain.NetworkID(networkID)
			}
			if cmd.Flags().Changed("deployment") {
				cfg.DeploymentFile = deploymentFile
			}

			var approver wallet.Approver = wallet.PromptApprover{In: os.Stdin, Out: os.Stderr}
			if assumeYes {
				approver = wallet.AutoApprove{}
			}
			appCtx, err = app.NewWire(cfg, app.Options{Passphrase: passphrase, Approver: approver})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx != nil {
				return appCtx.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.cryptocomm)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the signing key")
	root.PersistentFlags().StringVar(&nodeURL, "node", "", "ledger node base URL (overrides config)")
	root.PersistentFlags().Uint64Var(&networkID, "network", 0, "network id (overrides config)")
	root.PersistentFlags().StringVar(&deploymentFile, "deployment", "", "deployment file (overrides config)")
	root.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve authorization requests without prompting")

	root.AddCommand(
		initCmd(),
		connectCmd(),
		disconnectCmd(),
		whoamiCmd(),
		switchNetworkCmd(),
		deployCmd(),
		registerCmd(),
		profileCmd(),
		addFriendCmd(),
		friendsCmd(),
		searchCmd(),
		sendCmd(),
		sendFileCmd(),
		chatCmd(),
		verifyCmd(),
	)
	return root
}
