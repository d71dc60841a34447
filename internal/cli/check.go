package cli

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/animforge/internal/batch"
)

func checkCmd(g *globals) *cobra.Command {
	var (
		frames   string
		patterns []string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Compile and render every component under a directory",
		Long: `Check discovers component sources, compiles each one and renders the
selected frames. Files named *.fail.* must fail to compile or render.
The exit status is 1 when any fixture fails or cannot be read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			ctx := cmd.Context()
			b, done, err := g.backend(ctx)
			if err != nil {
				return err
			}
			defer done()

			var (
				checker  batch.Checker
				maxBytes int64
			)
			if b.client != nil {
				checker = &batch.RemoteChecker{Client: b.client, Frames: frames}
			} else {
				checker = &batch.LocalChecker{Service: b.service, Frames: frames}
				maxBytes = int64(b.service.Options().MaxSourceBytes)
			}

			report, err := batch.Run(ctx, checker, batch.Options{
				Root:     root,
				Patterns: patterns,
				Workers:  workers,
				MaxBytes: maxBytes,
			})
			if err != nil {
				return err
			}

			if g.format == FormatJSON {
				err = report.WriteJSON(cmd.OutOrStdout())
			} else {
				err = report.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return ErrFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&frames, "frames", "f", "", "frames to render per fixture (default frame 0)")
	cmd.Flags().StringSliceVarP(&patterns, "pattern", "p", nil, "doublestar patterns selecting fixtures (default **/*.{tsx,jsx,ts,js})")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent checks (default one per CPU)")
	return cmd
}
