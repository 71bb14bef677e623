package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikewalk/pkg/spikewalk"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, most recent first",
		Long: `List recorded runs, most recent first.

Runs only outlive the process with the sqlite store:
  spikewalkctl runs --store sqlite --db walk.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := client.Runs(cmd.Context(), spikewalk.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  evaluations=%s  best=%s (%s)  updated %s\n",
					run.RunID,
					humanize.Comma(int64(run.Evaluations)),
					formatFitness(run.BestFitness),
					run.BestGenome,
					humanize.Time(run.UpdatedAt),
				)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

func newEvaluationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluations <run-id>",
		Short: "List the evaluations recorded under a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Evaluations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, items)
			}
			out := cmd.OutOrStdout()
			for _, item := range items {
				fmt.Fprintf(out, "%s  genome=%s  fitness=%s  displacement=%s  %s\n",
					item.ID, item.GenomeID, formatFitness(item.Fitness), formatFitness(item.Displacement), humanize.Time(item.CreatedAt))
			}
			return nil
		},
	}
}
