package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptocomm/internal/deploy"
	"cryptocomm/internal/domain"
)

func deployCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish a registry and message ledger and save their addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if _, ok, err := appCtx.Deployments.LoadDeployment(); err != nil {
				return err
			} else if ok && !force {
				return fmt.Errorf("deployment already exists at %s (use --force to replace)", appCtx.Deployments.Path())
			}
			key, err := appCtx.Keys.LoadKey(passphrase)
			if err != nil {
				return err
			}
			d, err := deploy.Bootstrap(cmd.Context(), key, appCtx.Node, appCtx.Config.NetworkID, appCtx.Log.Named("deploy"))
			if err != nil {
				return err
			}
			if err := appCtx.Deployments.SaveDeployment(d); err != nil {
				return err
			}
			fmt.Printf("IdentityRegistry deployed to: %s\n", d.IdentityRegistry.Hex())
			fmt.Printf("MessageLedger deployed to:    %s\n", d.MessageLedger.Hex())
			fmt.Printf("Network: %s  Deployer: %s\n", d.NetworkID, domain.ShortAddress(d.Deployer))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing deployment file")
	return cmd
}
