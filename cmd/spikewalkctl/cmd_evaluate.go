package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikewalk/pkg/spikewalk"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one walking episode for a genome and report its fitness",
		Long: `Run one walking episode for a genome and report its fitness.

Examples:
  spikewalkctl evaluate --random --seed 7
  spikewalkctl evaluate --weights-file genome.json --store sqlite --db walk.db`,
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
			runID, _ := cmd.Flags().GetString("run")
			genomeID, _ := cmd.Flags().GetString("genome")

			summary, err := client.Evaluate(cmd.Context(), spikewalk.EvaluateRequest{
				RunID:    runID,
				GenomeID: genomeID,
				Weights:  weights,
				Random:   random,
				Seed:     seed,
			})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, summary)
			}
			printEvaluation(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	addGenomeFlags(cmd)
	cmd.Flags().String("run", "", "Run id to record the evaluation under (default generated)")
	cmd.Flags().String("genome", "", "Genome id (default generated)")
	return cmd
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate many genomes in parallel under one run",
		Long: `Evaluate many genomes in parallel under one run.

The genomes file holds a JSON array of weight arrays, or one comma
separated genome per line.

Examples:
  spikewalkctl batch --file population.json --workers 8
  spikewalkctl batch --random 20 --seed 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			file, _ := cmd.Flags().GetString("file")
			random, _ := cmd.Flags().GetInt("random")
			workers, _ := cmd.Flags().GetInt("workers")
			runID, _ := cmd.Flags().GetString("run")
			seed := cfg.Evaluation.Seed
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetInt64("seed")
			}

			var genomes [][]float64
			if file != "" {
				genomes, err = readGenomes(file)
				if err != nil {
					return err
				}
			}

			summary, err := client.EvaluateBatch(cmd.Context(), spikewalk.BatchRequest{
				RunID:   runID,
				Genomes: genomes,
				Random:  random,
				Seed:    seed,
				Workers: workers,
			})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: %s genomes evaluated\n", summary.RunID, humanize.Comma(int64(len(summary.Results))))
			for i, result := range summary.Results {
				fmt.Fprintf(out, "  %3d  %s  fitness=%s  displacement=%s\n",
					i, result.GenomeID, formatFitness(result.Fitness), formatFitness(result.Displacement))
			}
			fmt.Fprintf(out, "best: %s fitness=%s\n", summary.Best.GenomeID, formatFitness(summary.Best.Fitness))
			st := summary.Stats
			fmt.Fprintf(out, "fitness mean=%s std=%s median=%s min=%s max=%s\n",
				formatFitness(st.Mean), formatFitness(st.Std), formatFitness(st.Median), formatFitness(st.Min), formatFitness(st.Max))
			fmt.Fprintf(out, "walking forward: %d of %d (%.0f%%)\n", st.Walking, st.Count, 100*st.WalkingRate())
			return nil
		},
	}
	cmd.Flags().String("file", "", "File of genomes to evaluate")
	cmd.Flags().Int("random", 0, "Number of random genomes to add")
	cmd.Flags().Int64("seed", 0, "Base seed for random genomes (default from config)")
	cmd.Flags().Int("workers", 0, "Concurrent episodes (default from config)")
	cmd.Flags().String("run", "", "Run id (default generated)")
	return cmd
}

func printEvaluation(w io.Writer, summary spikewalk.EvaluateSummary) {
	fmt.Fprintf(w, "run:          %s\n", summary.RunID)
	fmt.Fprintf(w, "evaluation:   %s\n", summary.EvaluationID)
	fmt.Fprintf(w, "genome:       %s\n", summary.GenomeID)
	fmt.Fprintf(w, "fitness:      %s\n", formatFitness(summary.Fitness))
	fmt.Fprintf(w, "displacement: %s\n", formatFitness(summary.Displacement))
	fmt.Fprintf(w, "ticks:        %s\n", humanize.Comma(int64(summary.Ticks)))
	if len(summary.DutyCycles) > 0 {
		fmt.Fprintf(w, "duty cycles:  %s\n", formatFloats(summary.DutyCycles))
	}
}

func formatFitness(v float64) string {
	return humanize.FormatFloat("#,###.####", v)
}
