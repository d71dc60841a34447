package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/client"
)

func capabilitiesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "capabilities",
		Aliases: []string{"caps"},
		Short:   "List the names a component can use without importing them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := &client.Capabilities{Version: capability.Version, Capabilities: capability.Catalog()}
			if g.remote != "" {
				cfg, err := g.config()
				if err != nil {
					return err
				}
				if caps, err = g.client(cfg).Capabilities(cmd.Context()); err != nil {
					return err
				}
			}

			if g.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), caps)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "POSITION\tNAME\tKIND\n")
			for _, c := range caps.Capabilities {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", c.Position, c.Name, c.Kind)
			}
			fmt.Fprintf(tw, "\nversion %s\n", caps.Version)
			return tw.Flush()
		},
	}
}
