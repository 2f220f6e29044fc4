package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cryptocomm/internal/app"
)

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a signing key and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			exists, err := appCtx.Keys.HasKey()
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("a signing key already exists in %s (use --force to replace it)", home)
			}
			addr, fp, err := appCtx.Agent.Generate(passphrase)
			if err != nil {
				return err
			}

			if _, err := os.Stat(filepath.Join(home, app.ConfigFile)); errors.Is(err, os.ErrNotExist) {
				if err := app.SaveConfig(appCtx.Config); err != nil {
					return err
				}
			}

			fmt.Printf("Key created.\nAddress:     %s\nFingerprint: %s\n", addr.Hex(), fp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing key")
	return cmd
}
