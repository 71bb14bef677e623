package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spikewalkctl",
		Short: "Evaluate spiking-network controllers on a walking soft robot",
		Long: `spikewalkctl scores flat weight genomes for spiking neural network
controllers by how far they walk a voxel robot in a fixed-length episode.

Fitness is 100 minus the backward displacement of the robot's mean x, so a
stationary robot scores 100 and forward travel scores higher.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.spikewalk/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "Storage backend: memory or sqlite")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newEvaluateCmd(),
		newBatchCmd(),
		newProbeCmd(),
		newRunsCmd(),
		newEvaluationsCmd(),
		newShowCmd(),
		newLayoutCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spikewalkctl version %s\n", version)
			return nil
		},
	}
}
