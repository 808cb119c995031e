package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/mergington/internal/config"
)

func newSeedCmd(load func(*cobra.Command) (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Validate the activity catalogue and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			activities, err := loadCatalogue(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTIVITY\tSCHEDULE\tENROLLED\tCAPACITY")
			for _, a := range activities {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", a.Name, a.Schedule, len(a.Participants), a.MaxParticipants)
			}
			return tw.Flush()
		},
	}
}
