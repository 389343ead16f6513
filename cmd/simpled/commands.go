package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/artpar/simpled/internal/core/compose"
	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/resolver"
	"github.com/artpar/simpled/internal/core/spec"
	"github.com/artpar/simpled/internal/core/validation"
	"github.com/artpar/simpled/internal/shell/export"
	"github.com/artpar/simpled/internal/shell/loader"
)

// =============================================================================
// CLI State
// =============================================================================

// cli holds what every command shares. cfg and logger are set once flags
// are parsed.
type cli struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *Config
	logger     *slog.Logger
}

func highlight(a ...any) string {
	return color.RGB(50, 108, 229).Sprint(a...)
}

func newRootCommand(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{fs: fs, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "simpled",
		Short: "Resolve application deployments against an environment",
		Long: "simpled reads an application bundle (appspec.yaml) and an environment\n" +
			"descriptor (envspec.yaml) and resolves one deployment into concrete\n" +
			"services, routes, configs and secrets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Flags())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to config file (default ./simpled.yaml)")
	pf.String("root", "", "Environment root containing envspec.yaml (default .)")
	pf.String("bundle", "", "Application bundle directory or .tar.gz archive (default .)")
	pf.Int("parallelism", 0, "Services resolved at once (default GOMAXPROCS)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: text or json")
	pf.Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(
		newAppBundleCommand(c),
		newValidateCommand(c),
		newResolveCommand(c),
		newComposeCommand(c),
		newVersionCommand(c),
	)
	return cmd
}

func (c *cli) setup(flags *pflag.FlagSet) error {
	cfg, err := LoadConfig(c.fs, c.configPath, flags)
	if err != nil {
		return &CommandError{Op: "load config", Err: err, ExitCode: ExitConfigError}
	}
	c.cfg = cfg
	c.logger = SetupLogger(cfg, c.stderr)
	if cfg.NoColor {
		color.NoColor = true
	}
	return nil
}

// fail logs err with its fault scope and wraps it with an exit code.
func (c *cli) fail(op string, err error, code int) error {
	attrs := []any{"error", err, "kind", string(fault.KindOf(err))}
	var fe *fault.Error
	if errors.As(err, &fe) {
		if fe.Deployment != "" {
			attrs = append(attrs, "deployment", fe.Deployment)
		}
		if fe.Service != "" {
			attrs = append(attrs, "service", fe.Service)
		}
	}
	c.logger.Debug(op+" failed", attrs...)
	return &CommandError{Op: op, Err: err, ExitCode: code}
}

// =============================================================================
// Descriptor Loading
// =============================================================================

func (c *cli) loadDescriptors() (spec.DeploymentEnvironmentSpec, spec.AppSpec, error) {
	env, err := loader.LoadEnvSpec(c.fs, c.cfg.Root)
	if err != nil {
		return env, spec.AppSpec{}, c.fail("load environment", err, ExitDescriptorError)
	}
	c.logger.Debug("environment loaded",
		"root", c.cfg.Root,
		"type", env.Type.Kind.String(),
		"deployments", len(env.Deployments),
	)

	app, err := loader.LoadAppSpec(c.fs, c.cfg.Bundle, &env)
	if err != nil {
		return env, app, c.fail("load application", err, ExitDescriptorError)
	}
	c.logger.Debug("application loaded",
		"bundle", c.cfg.Bundle,
		"name", app.Name,
		"services", len(app.AppServices)+len(app.ExtraServices),
	)
	return env, app, nil
}

func (c *cli) resolve(ctx context.Context, deployment string) (*spec.EnvironmentResolvedSpec, error) {
	env, app, err := c.loadDescriptors()
	if err != nil {
		return nil, err
	}

	r := resolver.New(
		resolver.WithFs(c.fs),
		resolver.WithLogger(c.logger),
		resolver.WithParallelism(c.cfg.Parallelism),
	)
	resolved, err := r.Resolve(ctx, env, app, deployment)
	if err != nil {
		return nil, c.fail("resolve", err, ExitResolutionError)
	}
	c.logger.Info("deployment resolved",
		"deployment", deployment,
		"services", len(resolved.Deployment.Services),
	)
	return resolved, nil
}

// =============================================================================
// Commands
// =============================================================================

func newAppBundleCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app-bundle",
		Short: "Work with application bundles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check that the bundle's appspec.yaml loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loader.LoadAppSpec(c.fs, c.cfg.Bundle, nil)
			if err != nil {
				return c.fail("verify bundle", err, ExitDescriptorError)
			}
			fmt.Fprintln(c.stdout, highlight("Valid!"),
				fmt.Sprintf("%s %s: %d app services, %d extra services",
					app.Name, app.Version, len(app.AppServices), len(app.ExtraServices)))
			return nil
		},
	})
	return cmd
}

func newValidateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <deployment>",
		Short: "Check a deployment against its application without resolving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, app, err := c.loadDescriptors()
			if err != nil {
				return err
			}
			if err := validation.Validate(env, app, args[0]); err != nil {
				return c.fail("validate", err, ExitDescriptorError)
			}
			fmt.Fprintln(c.stdout, highlight("Valid!"),
				fmt.Sprintf("deployment %s runs %s %s", args[0], app.Name, app.Version))
			return nil
		},
	}
}

func newResolveCommand(c *cli) *cobra.Command {
	var (
		output      string
		showSecrets bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <deployment>",
		Short: "Resolve a deployment and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render, err := renderer(output)
			if err != nil {
				return &CommandError{Op: "resolve", Err: err, ExitCode: ExitConfigError}
			}
			resolved, err := c.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(c.stdout, resolved, showSecrets)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format. One of: (table | yaml | json)")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print secret values instead of masking them")
	return cmd
}

func newComposeCommand(c *cli) *cobra.Command {
	var (
		out         string
		projectName string
	)
	cmd := &cobra.Command{
		Use:   "compose <deployment>",
		Short: "Resolve a deployment and write it as a compose project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := c.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := export.NewWriter(c.fs, c.logger)
			result, err := w.Write(cmd.Context(), out, resolved, compose.Options{ProjectName: projectName})
			if err != nil {
				return c.fail("export", err, ExitResolutionError)
			}
			fmt.Fprintln(c.stdout, highlight("Wrote"),
				fmt.Sprintf("%s with %d files to %s", result.ComposeFile, len(result.Files), result.Dir))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output directory")
	cmd.Flags().StringVar(&projectName, "project-name", "", "Compose project name (default the deployment name)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "simpled %s (built %s)\n", Version, BuildTime)
		},
	}
}
