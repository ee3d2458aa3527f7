package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sshkex/internal/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sshkex.ini",
	}
	var stdout, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current (default) configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := app.WriteConfig(&buf, appCtx.Config); err != nil {
				return err
			}
			if stdout {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if _, err := os.Stat(appCtx.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s exists (use --force)", appCtx.ConfigPath)
			}
			if err := os.WriteFile(appCtx.ConfigPath, buf.Bytes(), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", appCtx.ConfigPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of writing the file")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
