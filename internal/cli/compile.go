package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/animforge/internal/api/http"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// compositionFlags override the configured composition; zero keeps the
// configured value.
type compositionFlags struct {
	id       string
	width    int
	height   int
	fps      float64
	duration int
}

func (f *compositionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "composition id")
	cmd.Flags().IntVar(&f.width, "width", 0, "composition width")
	cmd.Flags().IntVar(&f.height, "height", 0, "composition height")
	cmd.Flags().Float64Var(&f.fps, "fps", 0, "composition frame rate")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "composition length in frames")
}

func (f *compositionFlags) composition() sandbox.Composition {
	return sandbox.Composition{
		ID:               f.id,
		Width:            f.width,
		Height:           f.height,
		FPS:              f.fps,
		DurationInFrames: f.duration,
	}
}

func compileCmd(g *globals) *cobra.Command {
	var (
		comp        compositionFlags
		includeCode bool
	)
	cmd := &cobra.Command{
		Use:   "compile <file|->",
		Short: "Compile a component and report the diagnostic, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, done, err := g.backend(ctx)
			if err != nil {
				return err
			}
			defer done()

			resp, err := b.compile(ctx, apihttp.CompileRequest{
				Source:      source,
				Composition: comp.composition(),
				IncludeCode: includeCode,
			})
			if err != nil {
				return err
			}

			if g.format == FormatJSON {
				err = writeJSON(cmd.OutOrStdout(), resp)
			} else {
				err = writeCompileText(cmd.OutOrStdout(), resp)
			}
			if err != nil {
				return err
			}
			if !resp.Success {
				return ErrFailed
			}
			return nil
		},
	}
	comp.register(cmd)
	cmd.Flags().BoolVar(&includeCode, "code", false, "include the generated code")
	return cmd
}

func (b *backend) compile(ctx context.Context, req apihttp.CompileRequest) (*apihttp.CompileResponse, error) {
	if b.client != nil {
		return b.client.Compile(ctx, req)
	}
	c, err := b.service.Compile(ctx, req.Source, req.Composition)
	if err != nil {
		return nil, err
	}
	resp := apihttp.NewCompileResponse(c, req.IncludeCode)
	return &resp, nil
}

func writeCompileText(w io.Writer, resp *apihttp.CompileResponse) error {
	if resp.Success {
		fmt.Fprintf(w, "ok %s (%.2fms)\n", resp.ID, resp.DurationMS)
	} else {
		fmt.Fprintf(w, "%s failed at %s: %s\n", resp.Error.Kind, resp.Error.Stage, resp.Error.Message)
	}
	if resp.Code != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", resp.Code)
		return err
	}
	return nil
}
