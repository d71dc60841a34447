package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/client"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/config"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/logging"
)

// ErrFailed is returned when a command ran but its subject did not pass: a
// compilation produced a diagnostic or a check found failures. The output
// already describes the failure.
var ErrFailed = errors.New("failed")

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

type globals struct {
	configPath string
	remote     string
	format     string
	verbose    bool
}

// NewRootCommand builds the animc command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "animc",
		Short:         "Compile, preview and check animation components",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if g.format != FormatText && g.format != FormatJSON {
				return fmt.Errorf("unknown format %q (want text or json)", g.format)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "YAML or TOML config file")
	flags.StringVar(&g.remote, "remote", "", "preview server URL; work runs in-process when empty")
	flags.StringVarP(&g.format, "format", "o", FormatText, "output format: text or json")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		compileCmd(g),
		renderCmd(g),
		checkCmd(g),
		capabilitiesCmd(g),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFailed):
		return 1
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 2
}

func (g *globals) config() (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFile(g.configPath)
	}
	return config.Load()
}

func (g *globals) logger() *logging.Logger {
	lc := logging.Config{Level: "warn", OutputPaths: []string{"stderr"}}
	if g.verbose {
		lc.Level = "debug"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// backend is where a command's work runs: an in-process preview service or
// a remote server.
type backend struct {
	service *preview.Service
	client  *client.Client
}

func (g *globals) backend(ctx context.Context) (*backend, func(), error) {
	cfg, err := g.config()
	if err != nil {
		return nil, nil, err
	}

	if g.remote == "" {
		svc := preview.NewService(capability.Default(), preview.OptionsFromConfig(cfg), g.logger())
		return &backend{service: svc}, func() { _ = svc.Close() }, nil
	}

	c := g.client(cfg)
	if err := c.CheckVersion(ctx, capability.Default()); err != nil {
		return nil, nil, err
	}
	return &backend{client: c}, func() {}, nil
}

func (g *globals) client(cfg *config.Config) *client.Client {
	ccfg := client.FromConfig(cfg.Remote)
	ccfg.BaseURL = strings.TrimRight(g.remote, "/")
	return client.New(ccfg)
}

// readSource reads a component from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
