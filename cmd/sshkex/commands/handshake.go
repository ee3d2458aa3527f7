package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/transport"
)

func handshakeCmd() *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "handshake",
		Short: "Run initiator and responder in process and print the result",
		Long: "Runs both sides over an in-memory pipe with a throwaway host key\n" +
			"(or the stored one when -p is given) and prints H and the derived keys.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hk, err := localHostKey()
			if err != nil {
				return err
			}
			opts := appCtx.HandshakeOptions()
			methods := opts.Methods
			if method != "" {
				if _, err := kex.LookupMethod(method); err != nil {
					return err
				}
				methods = []string{method}
			}
			base := transport.Options{
				Methods:       methods,
				Groups:        opts.Groups,
				Policy:        opts.Policy,
				LegacyRequest: opts.LegacyRequest,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			a, b := transport.Pipe()
			defer a.Close()

			ini, resp := base, base
			ini.Role, ini.LocalVersion, ini.RemoteVersion = domain.Initiator, opts.ClientVersion, opts.ServerVersion
			resp.Role, resp.LocalVersion, resp.RemoteVersion = domain.Responder, opts.ServerVersion, opts.ClientVersion
			resp.HostKey = hk

			errc := make(chan error, 1)
			go func() {
				_, err := transport.Run(ctx, b, resp)
				errc <- err
			}()
			res, err := transport.Run(ctx, a, ini)
			if rerr := <-errc; err == nil {
				err = rerr
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "force one kex method")
	return cmd
}

// localHostKey loads the stored host key when a passphrase is given, and
// otherwise makes a throwaway one.
func localHostKey() (*crypto.HostKey, error) {
	if passphrase != "" && appCtx.HostKeys.Exists() {
		return appCtx.HostKey(passphrase)
	}
	hk, _, err := crypto.GenerateHostKey(rand.Reader)
	return hk, err
}

func printResult(w io.Writer, res *domain.Result) {
	keys := kex.DeriveKeys(res, nil, kex.KeySizes{IV: 16, Cipher: 16, MAC: 32})
	fmt.Fprintf(w, "Method:   %s\n", res.Method)
	fmt.Fprintf(w, "Host key: %s\n", crypto.Fingerprint(res.HostKey))
	fmt.Fprintf(w, "H:        %x\n", res.H)
	fmt.Fprintf(w, "Key C->S: %x\n", keys.EncClientToServer)
	fmt.Fprintf(w, "Key S->C: %x\n", keys.EncServerToClient)
}
