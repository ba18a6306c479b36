package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/render"
	"github.com/me/schedsim/internal/simulator"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/internal/tasksource"
	"github.com/me/schedsim/pkg/model"
)

// runParams is archived with every run so it can be reproduced.
type runParams struct {
	Simulation simulator.Config  `json:"simulation"`
	Tasks      tasksource.Config `json:"tasks"`
}

// simFlags are the overrides shared by run and serve.
type simFlags struct {
	seed uint64
	pace time.Duration
}

func (f *simFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Task source seed (overrides tasks.seed; 0 picks one at random)")
	cmd.Flags().DurationVar(&f.pace, "pace", 0, "Real-time delay between ticks (overrides simulation.pace)")
}

func (f *simFlags) apply(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("seed") {
		c.Tasks.Seed = f.seed
	}
	if cmd.Flags().Changed("pace") {
		c.Simulation.Pace = f.pace
	}
}

// newSimulation generates the task population and builds a simulator for it.
func newSimulation(c config.Config) (*simulator.Simulator, runParams, error) {
	gen, err := tasksource.NewGenerator(c.Tasks, c.Simulation.Precision)
	if err != nil {
		return nil, runParams{}, err
	}
	params := runParams{Simulation: c.Simulation, Tasks: c.Tasks}
	params.Tasks.Seed = gen.Seed()

	sim, err := simulator.New(c.Simulation, gen.Generate(), logger)
	if err != nil {
		return nil, runParams{}, err
	}
	logger.Info("tasks generated", "run_id", sim.RunID(), "count", c.Tasks.Count, "seed", gen.Seed())
	return sim, params, nil
}

// archive saves a finished run. A nil store means archiving is disabled.
func archive(ctx context.Context, st store.Store, report model.Report, params runParams) {
	if st == nil {
		return
	}
	if err := st.SaveRun(ctx, &report, params); err != nil {
		logger.Error("archive run", "run_id", report.RunID, "error", err)
		return
	}
	logger.Info("run archived", "run_id", report.RunID)
}

func newRunCmd() *cobra.Command {
	var sf simFlags
	var show, clearScreen bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation to completion and print its report",
		Long: `Generates a task population, runs the simulation until it succeeds, fails
or is interrupted (Ctrl-C), and prints the final report. The exit status is
non-zero when the run ends in FAILURE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			sim, params, err := newSimulation(cfg)
			if err != nil {
				return err
			}

			var observers []simulator.Observer
			if show {
				observers = append(observers, render.New(cmd.OutOrStdout(), clearScreen))
			}
			loop := simulator.NewLoop(sim, logger, observers...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				loop.Stop()
			}()

			report, err := loop.Start(cmd.Context())
			if err != nil {
				return fmt.Errorf("simulation: %w", err)
			}

			archive(cmd.Context(), storeOrNil(st), report, params)

			render.Report(cmd.OutOrStdout(), report)
			return simulator.FailureError(report)
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&show, "render", false, "Print a console screen after every tick")
	cmd.Flags().BoolVar(&clearScreen, "clear", false, "Clear the terminal before each rendered screen")

	return cmd
}

// storeOrNil keeps a nil *SQLiteStore from becoming a non-nil Store.
func storeOrNil(st *store.SQLiteStore) store.Store {
	if st == nil {
		return nil
	}
	return st
}
