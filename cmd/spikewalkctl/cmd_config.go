package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration after applying defaults, the config
file, SPIKEWALK_* environment variables and command line flags.

Environment variables:
  SPIKEWALK_LOG_LEVEL, SPIKEWALK_STORE, SPIKEWALK_DB_PATH,
  SPIKEWALK_WORKERS, SPIKEWALK_SEED, SPIKEWALK_TICKS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, cfg)
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
