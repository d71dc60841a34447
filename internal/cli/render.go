package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/animforge/internal/api/http"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/markup"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

func renderCmd(g *globals) *cobra.Command {
	var (
		comp   compositionFlags
		frames string
		html   bool
		sel    string
		xpath  string
	)
	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render frames of a component as element trees",
		Long: `Render compiles a component and renders the selected frames.

Frames are a comma separated list of frames and ranges: "12", "0-29",
"0-149:30" or "all". The default is frame 0.

With --html each frame is printed as sanitized static markup; --select and
--xpath print only the matching elements of that markup.`,
		Args: cobra.ExactArgs(1),
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

			q := queryFunc(sel, xpath)
			resp, err := b.render(ctx, apihttp.RenderRequest{
				CompileRequest: apihttp.CompileRequest{Source: source, Composition: comp.composition()},
				Frames:         apihttp.FrameSelection{Spec: frames},
				HTML:           html || q != nil,
			})
			if err != nil {
				return err
			}

			switch {
			case q != nil && resp.Success:
				err = writeMatches(cmd.OutOrStdout(), g.format, resp.Frames, q)
			case html && g.format == FormatText && resp.Success:
				err = writeHTML(cmd.OutOrStdout(), resp.Frames)
			case g.format == FormatJSON:
				err = writeJSON(cmd.OutOrStdout(), resp)
			default:
				err = writeRenderText(cmd.OutOrStdout(), resp)
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
	cmd.Flags().StringVarP(&frames, "frames", "f", "", "frames to render")
	cmd.Flags().BoolVar(&html, "html", false, "print frames as static HTML")
	cmd.Flags().StringVar(&sel, "select", "", "print the elements matching a CSS selector")
	cmd.Flags().StringVar(&xpath, "xpath", "", "print the elements matching an XPath expression")
	cmd.MarkFlagsMutuallyExclusive("select", "xpath")
	return cmd
}

func (b *backend) render(ctx context.Context, req apihttp.RenderRequest) (*apihttp.RenderResponse, error) {
	if b.client != nil {
		return b.client.Render(ctx, req)
	}
	comp, err := b.service.Composition(req.Composition)
	if err != nil {
		return nil, err
	}
	frames, err := req.Frames.Resolve(comp.DurationInFrames, b.service.Options().MaxFrames)
	if err != nil {
		return nil, err
	}
	r, err := b.service.Render(ctx, req.Source, comp, frames)
	if err != nil {
		return nil, err
	}
	if req.HTML {
		renderer := markup.NewRenderer()
		for _, f := range r.Frames {
			if err := f.RenderHTML(renderer); err != nil {
				return nil, err
			}
		}
	}
	resp := apihttp.NewRenderResponse(r, false)
	return &resp, nil
}

func writeRenderText(w io.Writer, resp *apihttp.RenderResponse) error {
	if !resp.Success {
		return writeCompileText(w, &resp.CompileResponse)
	}
	for _, f := range resp.Frames {
		fmt.Fprintf(w, "frame %d\n", f.Index)
		for _, n := range f.Nodes {
			writeNode(w, n, 1)
		}
	}
	for _, e := range resp.Console {
		fmt.Fprintf(w, "console.%s: %s\n", e.Level, e.Message)
	}
	return nil
}

func writeHTML(w io.Writer, frames []*preview.Frame) error {
	for _, f := range frames {
		if _, err := fmt.Fprintf(w, "<!-- frame %d -->\n%s\n", f.Index, f.HTML); err != nil {
			return err
		}
	}
	return nil
}

type query func(fragment string) ([]markup.Match, error)

func queryFunc(sel, xpath string) query {
	switch {
	case sel != "":
		return func(fragment string) ([]markup.Match, error) { return markup.Select(fragment, sel) }
	case xpath != "":
		return func(fragment string) ([]markup.Match, error) { return markup.XPath(fragment, xpath) }
	}
	return nil
}

type frameMatches struct {
	Frame   int            `json:"frame"`
	Matches []markup.Match `json:"matches"`
}

func writeMatches(w io.Writer, format string, frames []*preview.Frame, q query) error {
	out := make([]frameMatches, 0, len(frames))
	for _, f := range frames {
		matches, err := q(f.HTML)
		if err != nil {
			return err
		}
		if matches == nil {
			matches = []markup.Match{}
		}
		out = append(out, frameMatches{Frame: f.Index, Matches: matches})
	}

	if format == FormatJSON {
		return writeJSON(w, out)
	}
	for _, fm := range out {
		for _, m := range fm.Matches {
			fmt.Fprintf(w, "%d\t%s\n", fm.Frame, m.HTML)
		}
	}
	return nil
}

func writeNode(w io.Writer, n *sandbox.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Type == sandbox.TextNode {
		fmt.Fprintf(w, "%s%q\n", indent, n.Text)
		return
	}
	fmt.Fprintf(w, "%s<%s%s>\n", indent, n.Type, attrs(n))
	for _, c := range n.Children {
		writeNode(w, c, depth+1)
	}
}

func attrs(n *sandbox.Node) string {
	var b strings.Builder
	for _, key := range []string{"id", "className"} {
		if v := n.Prop(key); v != "" {
			fmt.Fprintf(&b, " %s=%q", key, v)
		}
	}
	return b.String()
}
