package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// send <counterpart> <message>: append a text message to the ledger.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <address|username> <message>",
		Short: "Send a text message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			f, err := resolveCounterpart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := appCtx.Messages.SendText(cmd.Context(), f.Address, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("sent (#%d)\n", r.Sequence)
			return nil
		},
	}
}

// send-file <counterpart> <path>: upload to the blob store and send the locator.
func sendFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-file <address|username> <path>",
		Short: "Upload a file and send its link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConnected(cmd.Context()); err != nil {
				return err
			}
			f, err := resolveCounterpart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			r, locator, err := appCtx.Messages.SendFile(cmd.Context(), f.Address, filepath.Base(args[1]), file)
			if err != nil {
				return err
			}
			fmt.Printf("sent %s (#%d)\n", locator, r.Sequence)
			return nil
		},
	}
}
