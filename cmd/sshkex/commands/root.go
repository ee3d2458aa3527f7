package commands

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sshkex/internal/app"
)

var (
	home       string
	configPath string
	passphrase string
	appCtx     *app.App
)

// Execute runs the root command.
func Execute() error {
	return newRoot().ExecuteContext(context.Background())
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "sshkex",
		Short:        "SSH Diffie-Hellman key exchange toolkit",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog reads its flags from the standard set.
			_ = flag.CommandLine.Parse(nil)
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".sshkex")
			}
			a, err := app.New(home, configPath)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.sshkex)")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default <home>/sshkex.ini)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the host key")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	root.PersistentFlags().AddFlagSet(pflag.CommandLine)

	root.AddCommand(
		configCmd(),
		groupsCmd(),
		selectCmd(),
		hostKeyCmd(),
		handshakeCmd(),
		serveCmd(),
		connectCmd(),
	)
	return root
}
