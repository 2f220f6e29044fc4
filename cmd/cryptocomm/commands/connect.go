package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cryptocomm/internal/domain"
)

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Authorize this client to use your signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.CheckNetwork(cmd.Context()); err != nil {
				return err
			}
			addr, err := appCtx.Session.Connect(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Connected: %s on network %s\n", addr.Hex(), appCtx.Session.Network())
			return nil
		},
	}
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Revoke this client's authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Agent.Revoke(); err != nil {
				return err
			}
			fmt.Println("Disconnected")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the connected address and registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := appCtx.Session.CurrentAddress()
			if err != nil {
				return err
			}
			if addr == nil {
				fmt.Println("Not connected")
				return nil
			}
			fmt.Printf("Address: %s\nNetwork: %s\n", addr.Hex(), appCtx.Session.Network())
			if fp, err := appCtx.Agent.Fingerprint(); err == nil {
				fmt.Printf("Fingerprint: %s\n", fp)
			}
			if appCtx.RequireDeployment() != nil {
				return nil
			}
			registered, err := appCtx.Registry.Exists(cmd.Context(), *addr)
			if err != nil {
				return err
			}
			fmt.Printf("Registered: %t\n", registered)
			return nil
		},
	}
}

func switchNetworkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch-network <id>",
		Short: "Point the signing agent at another network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid network id %q", args[0])
			}
			if err := appCtx.Agent.SwitchNetwork(domain.NetworkID(id)); err != nil {
				return err
			}
			fmt.Printf("Agent now on network %d. Session reset; check deployment_file matches.\n", id)
			return nil
		},
	}
}
