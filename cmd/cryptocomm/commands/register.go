package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Register a username for your address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			r, err := appCtx.Registry.Register(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Registered %q (tx %s)\n", args[0], r.TxID)
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your username, address and friend count",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			me, err := appCtx.Registry.Self(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Username: %s\nAddress:  %s\nFriends:  %d\n", me.Username, me.Address.Hex(), len(me.Friends))
			return nil
		},
	}
}
