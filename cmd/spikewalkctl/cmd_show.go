package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <evaluation-id>",
		Short: "Show an evaluation and the structure of its genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			e := summary.Evaluation
			fmt.Fprintf(out, "evaluation %s (run %s), %s\n", e.ID, e.RunID, humanize.Time(e.CreatedAt))
			fmt.Fprintf(out, "fitness=%s displacement=%s ticks=%d\n", formatFitness(e.Fitness), formatFitness(e.Displacement), e.Ticks)
			g := summary.Genome
			fmt.Fprintf(out, "genome %s: %d networks of %d-%d-%d\n", g.ID, g.Networks, g.Input, g.Hidden, g.Output)
			for _, net := range summary.Networks {
				fmt.Fprintf(out, "network %d\n", net.Index)
				fmt.Fprintln(out, "  hidden layer:")
				for i, row := range net.HiddenWeights {
					fmt.Fprintf(out, "    neuron %d: %s\n", i, formatFloats(row))
				}
				fmt.Fprintln(out, "  output layer:")
				for i, row := range net.OutputWeights {
					fmt.Fprintf(out, "    neuron %d: %s\n", i, formatFloats(row))
				}
			}
			return nil
		},
	}
}
