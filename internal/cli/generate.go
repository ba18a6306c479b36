package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/me/schedsim/internal/tasksource"
	"github.com/me/schedsim/pkg/model"
)

// taskList is the YAML document printed by generate.
type taskList struct {
	Seed  uint64       `yaml:"seed"`
	Tasks []model.Task `yaml:"tasks"`
}

func newGenerateCmd() *cobra.Command {
	var seed uint64
	var count int
	var sorted bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated task population as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := cfg.Tasks
			if cmd.Flags().Changed("seed") {
				tc.Seed = seed
			}
			if cmd.Flags().Changed("count") {
				tc.Count = count
			}

			gen, err := tasksource.NewGenerator(tc, cfg.Simulation.Precision)
			if err != nil {
				return err
			}
			doc := taskList{Seed: gen.Seed(), Tasks: model.CloneTasks(gen.Generate())}
			if sorted {
				sort.SliceStable(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].Arrival < doc.Tasks[j].Arrival })
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode tasks: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Task source seed (overrides tasks.seed; 0 picks one at random)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of tasks (overrides tasks.count)")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Order tasks by arrival delay")

	return cmd
}
