package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"sshkex/internal/crypto"
)

func hostKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostkey",
		Short: "Manage the server host key",
	}
	cmd.AddCommand(hostKeyInitCmd(), hostKeyFingerprintCmd())
	return cmd
}

func hostKeyInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an Ed25519 host key and store it sealed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if appCtx.HostKeys.Exists() && !force {
				return fmt.Errorf("host key exists (use --force to replace it)")
			}
			hk, priv, err := crypto.GenerateHostKey(rand.Reader)
			if err != nil {
				return err
			}
			if err := appCtx.HostKeys.SaveHostKey(passphrase, priv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Host key created.\nFingerprint: %s\n", hk.Fingerprint())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing host key")
	return cmd
}

func hostKeyFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the host key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			hk, err := appCtx.HostKey(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hk.Algorithm(), hk.Fingerprint())
			return nil
		},
	}
}
