package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Describe the genome layout the current config expects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			layout, err := client.Layout(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, layout)
			}
			l := layout.Layout
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "networks:      %d x %s\n", layout.Networks, l)
			fmt.Fprintf(out, "genome length: %d\n", layout.GenomeLength)
			fmt.Fprintf(out, "per network:   hidden %d x (%d weights + bias), then output %d x (%d weights + bias)\n",
				l.Hidden, l.Input, l.Output, l.Hidden)
			fmt.Fprintf(out, "actuators:     %d, target = duty*%.2f + %.2f clamped to [%.2f, %.2f]\n",
				layout.Actuators, layout.Actuation.Scale, layout.Actuation.Offset, layout.Actuation.Min, layout.Actuation.Max)
			fmt.Fprintf(out, "scapes:        %s\n", strings.Join(layout.Scapes, ", "))
			fmt.Fprintf(out, "sensors:       %s\n", strings.Join(layout.SensorComponents, ", "))
			fmt.Fprintf(out, "actuator IO:   %s\n", strings.Join(layout.ActuatorComponents, ", "))
			return nil
		},
	}
}
