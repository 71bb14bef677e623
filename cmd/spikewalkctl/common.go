package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spikewalk/internal/config"
	"spikewalk/internal/logging"
	"spikewalk/pkg/spikewalk"
)

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadConfig resolves defaults, the config file, SPIKEWALK_* variables and
// finally command line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Storage.Kind = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newClient(cmd *cobra.Command) (*spikewalk.Client, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	client, err := spikewalk.New(spikewalk.Options{
		Config: cfg,
		Logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// parseWeights reads a comma or whitespace separated list of floats.
func parseWeights(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readGenomes loads genomes from a file holding either a JSON array of
// weight arrays or one comma separated genome per line.
func readGenomes(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genomes: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var genomes [][]float64
		if err := json.Unmarshal([]byte(trimmed), &genomes); err != nil {
			var single []float64
			if singleErr := json.Unmarshal([]byte(trimmed), &single); singleErr != nil {
				return nil, fmt.Errorf("parsing genomes: %w", err)
			}
			genomes = [][]float64{single}
		}
		return genomes, nil
	}

	var genomes [][]float64
	for n, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		weights, err := parseWeights(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		genomes = append(genomes, weights)
	}
	return genomes, nil
}

// genomeFlags are shared by commands that take a single genome.
func addGenomeFlags(cmd *cobra.Command) {
	cmd.Flags().String("weights", "", "Comma separated flat weight vector")
	cmd.Flags().String("weights-file", "", "File holding the flat weight vector")
	cmd.Flags().Bool("random", false, "Use a randomly initialised genome")
	cmd.Flags().Int64("seed", 0, "Seed for --random (default from config)")
}

func genomeFromFlags(cmd *cobra.Command, cfg *config.Config) (weights []float64, random bool, seed int64, err error) {
	inline, _ := cmd.Flags().GetString("weights")
	file, _ := cmd.Flags().GetString("weights-file")
	random, _ = cmd.Flags().GetBool("random")
	seed = cfg.Evaluation.Seed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetInt64("seed")
	}

	sources := 0
	for _, set := range []bool{inline != "", file != "", random} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, false, 0, fmt.Errorf("exactly one of --weights, --weights-file or --random is required")
	}

	switch {
	case inline != "":
		weights, err = parseWeights(inline)
	case file != "":
		var genomes [][]float64
		genomes, err = readGenomes(file)
		if err == nil && len(genomes) != 1 {
			err = fmt.Errorf("expected one genome in %s, found %d", file, len(genomes))
		}
		if err == nil {
			weights = genomes[0]
		}
	}
	return weights, random, seed, err
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', 3, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
