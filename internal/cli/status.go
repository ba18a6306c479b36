package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/render"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest snapshot of a running schedsim server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := client.Snapshot()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run: %s\n", snap.RunID)
			fmt.Fprint(cmd.OutOrStdout(), render.Format(snap))
			return nil
		},
	}
}
