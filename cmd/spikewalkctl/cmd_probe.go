package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spikewalk/pkg/spikewalk"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Drive a controller with random inputs and show its actuator output",
		Long: `Drive every network of a controller with uniform random inputs for a
number of steps, then print the output duty cycles and the actuator target
lengths they map to. No episode is run and nothing is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			weights, random, seed, err := genomeFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")

			summary, err := client.Probe(cmd.Context(), spikewalk.ProbeRequest{
				Weights: weights,
				Random:  random,
				Seed:    seed,
				Steps:   steps,
			})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "steps:       %d\n", summary.Steps)
			fmt.Fprintf(out, "duty cycles: %s\n", formatFloats(summary.DutyCycles))
			fmt.Fprintf(out, "actions:     %s\n", formatFloats(summary.Actions))
			return nil
		},
	}
	addGenomeFlags(cmd)
	cmd.Flags().Int("steps", 100, "Number of random input steps")
	return cmd
}
