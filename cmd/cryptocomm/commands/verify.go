package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the message ledger's hash chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.RequireDeployment(); err != nil {
				return err
			}
			if err := appCtx.CheckNetwork(cmd.Context()); err != nil {
				return err
			}
			report, err := appCtx.Messages.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Ledger intact: %d entries, head %s\n", report.Entries, report.Head.Hex())
			return nil
		},
	}
}
