package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sshkex/internal/protocol/groups"
)

func groupsCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the groups available to group exchange",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, g := range appCtx.Groups.Groups() {
				line := fmt.Sprintf("%-24s %5d bits  g=%s", g.Name, g.Bits(), g.G)
				if check {
					safe := groups.IsSafePrime(g.P, 20)
					line += fmt.Sprintf("  safe-prime=%t", safe)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "verify that each modulus is a safe prime (slow for large groups)")
	return cmd
}

func selectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <min> <preferred> <max>",
		Short: "Show the group a GEX request would get",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bits [3]uint32
			for i, a := range args {
				v, err := strconv.ParseUint(a, 10, 32)
				if err != nil {
					return fmt.Errorf("bad size %q: %w", a, err)
				}
				bits[i] = uint32(v)
			}
			g, err := appCtx.Groups.Select(bits[0], bits[1], bits[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bits)\n", g.Name, g.Bits())
			return nil
		},
	}
}
