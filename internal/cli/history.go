package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/pkg/model"
)

func newHistoryCmd() *cobra.Command {
	var limit, offset int
	var state string

	cmd := &cobra.Command{
		Use:   "history [run_id]",
		Short: "List archived runs, or show one run with its rejections",
		Long: `Reads the run history from the local database (--db or store.path). Without
a database the history of a running "schedsim serve" is queried via --server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := getRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRun(out, run)
				return nil
			}

			opts := model.ListOptions{Limit: limit, Offset: offset, State: state}
			runs, total, err := listRuns(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printRuns(out, runs, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Runs to skip")
	cmd.Flags().StringVar(&state, "state", "", "Only list runs in this state (SUCCESS, FAILURE, RUNNING)")

	return cmd
}

func listRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	if cfg.Store.Path != "" {
		st, err := openStore(ctx)
		if err != nil {
			return nil, 0, err
		}
		defer st.Close()
		return st.ListRuns(ctx, opts)
	}
	return client.Runs(opts)
}

func getRun(ctx context.Context, id string) (*model.Run, error) {
	if cfg.Store.Path != "" {
		st, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		run, err := st.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, model.NewNotFoundError("run", id)
		}
		return run, nil
	}
	return client.Run(id)
}

func printRuns(w io.Writer, runs []*model.Run, total int) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%-44s  %-8s  %8s  %6s  %9s  %8s  %s\n", "ID", "STATE", "TIME", "TICKS", "COMPLETED", "REJECTED", "STARTED")
	fmt.Fprintf(w, "%-44s  %-8s  %8s  %6s  %9s  %8s  %s\n", "--", "-----", "----", "-----", "---------", "--------", "-------")
	for _, r := range runs {
		fmt.Fprintf(w, "%-44s  %-8s  %8g  %6d  %9d  %8d  %s\n",
			r.RunID, r.State, r.Time, r.Ticks, r.Counters.Completed, r.Counters.Rejected,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if len(runs) < total {
		fmt.Fprintf(w, "\n(%d of %d shown)\n", len(runs), total)
	}
}

func printRun(w io.Writer, r *model.Run) {
	c := r.Counters
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "  State:    %s", r.State)
	if r.Interrupted {
		fmt.Fprint(w, " (interrupted)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Time:     %g after %d ticks\n", r.Time, r.Ticks)
	fmt.Fprintf(w, "  Started:  %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  Tasks:    %d total, %d admitted, %d dispatched, %d completed, %d preempted, %d rejected\n",
		c.Total, c.Admitted, c.Dispatched, c.Completed, c.Preempted, c.Rejected)
	if len(r.Params) > 0 {
		fmt.Fprintf(w, "  Params:   %s\n", r.Params)
	}
	if len(r.Rejections) > 0 {
		fmt.Fprintln(w, "  Rejections:")
		for _, rej := range r.Rejections {
			fmt.Fprintf(w, "    %s\n", rej.Message)
		}
	}
}
