package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cryptocomm/internal/services/discovery"
)

func addFriendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-friend <address|username>",
		Short: "Add a registered user to your friend list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			f, err := resolveCounterpart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := appCtx.Registry.AddFriend(cmd.Context(), f.Address); err != nil {
				return err
			}
			fmt.Printf("Added %s\n", displayName(f))
			return nil
		},
	}
}

func friendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "friends [filter]",
		Short: "List your friends, optionally filtered by name or address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			friends, err := appCtx.Discovery.ListFriends(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				friends = discovery.Filter(friends, args[0])
			}
			if len(friends) == 0 {
				fmt.Println("No friends found")
				return nil
			}
			for _, f := range friends {
				fmt.Printf("%-20s %s\n", f.Username, f.Address.Hex())
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <address|username>",
		Short: "Look up a registered user by exact address or username",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			f, found, err := appCtx.Discovery.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("No user found")
				return nil
			}
			fmt.Printf("%s %s\n", f.Username, f.Address.Hex())
			return nil
		},
	}
}
