package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/andresmejia3/imglabel/internal/annotate"
	"github.com/andresmejia3/imglabel/internal/config"
	"github.com/andresmejia3/imglabel/internal/layout"
	"github.com/andresmejia3/imglabel/internal/output"
	"github.com/andresmejia3/imglabel/internal/render"
	"github.com/andresmejia3/imglabel/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/opentype"
)

// Version is the application version.
const Version = "0.1.0"

func newRootCmd() *cobra.Command {
	var (
		configPath string
		sizeMode   = layout.Fixed
	)

	rootCmd := &cobra.Command{
		Use:   "imglabel IMAGE_FILE LABEL_TEXT",
		Short: "Draw a text label on a colored banner across an image",
		Long: "Reads IMAGE_FILE, fills a banner strip near the top, writes LABEL_TEXT on it\n" +
			"and saves the result under the output directory with the same file name.",
		Example: `  imglabel photo.jpg "Day 1"
  imglabel photo.png "Draft" -c "#000000" -b "#FFD700" -o out --size-mode proportional`,
		Version:       Version, // This enables the --version flag
		Args:          exactArgs(2),
		SilenceErrors: true, // Execute reports errors itself
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			opts, err := validateFlags(cfg, args)
			if err != nil {
				return err
			}

			// From here on failures are runtime errors, not usage mistakes.
			cmd.SilenceUsage = true

			opts.Log = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if !cfg.Quiet {
				opts.Progress = cmd.ErrOrStderr()
			}
			if opts.Font, err = loadFont(cfg.Font); err != nil {
				return err
			}

			path, err := annotate.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !cfg.Quiet {
				// Keep the bar's last line separate from the result.
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Labeled image written to %s\n", path)
			return nil
		},
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &utils.UsageError{Err: err}
	})

	f := rootCmd.Flags()
	f.StringP("color", "c", "#FFFFFF", "Label text color (HEX: #RGB, #RRGGBB or #RRGGBBAA)")
	f.StringP("banner-color", "b", "#F1A282", "Banner fill color (HEX)")
	f.StringP("output-dir", "o", output.DefaultDir, "Directory for the labeled image (created if missing)")
	f.StringP("output-name", "n", "", "Output file name (default: input file name); the extension picks the format")
	f.VarP(&sizeMode, "size-mode", "m", "Label sizing: 'fixed' (32px) or 'proportional' (image height / 20)")
	f.StringP("font", "f", "", "Path to a TrueType/OpenType font (default: embedded Go Mono)")
	f.String("log-level", "warn", "Log level: debug, info, warn, error")
	f.BoolP("quiet", "q", false, "Hide the progress bar")
	f.StringVar(&configPath, "config", "", "Optional config file (yaml, toml or json) with the same keys as the flags")

	return rootCmd
}

// exactArgs is cobra.ExactArgs reporting a UsageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &utils.UsageError{Err: fmt.Errorf("expected IMAGE_FILE and LABEL_TEXT: %w", err)}
		}
		return nil
	}
}

// validateFlags turns the merged settings into pipeline options. Anything
// malformed here is a usage error.
func validateFlags(cfg *config.Config, args []string) (annotate.Options, error) {
	labelColor, err := utils.ParseHexColor(cfg.Color)
	if err != nil {
		return annotate.Options{}, &utils.UsageError{Err: fmt.Errorf("--color: %w", err)}
	}
	bannerColor, err := utils.ParseHexColor(cfg.BannerColor)
	if err != nil {
		return annotate.Options{}, &utils.UsageError{Err: fmt.Errorf("--banner-color: %w", err)}
	}

	// The size mode may come from a config file, which bypasses flag parsing.
	var mode layout.SizeMode
	if err := mode.Set(cfg.SizeMode); err != nil {
		return annotate.Options{}, &utils.UsageError{Err: fmt.Errorf("--size-mode: %w", err)}
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return annotate.Options{}, &utils.UsageError{Err: fmt.Errorf("--log-level: %w", err)}
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		return annotate.Options{}, &utils.UsageError{Err: fmt.Errorf("--output-dir must not be empty")}
	}

	return annotate.Options{
		InputPath:   args[0],
		Text:        args[1],
		LabelColor:  labelColor,
		BannerColor: bannerColor,
		OutputDir:   cfg.OutputDir,
		OutputName:  cfg.OutputName,
		SizeMode:    mode,
	}, nil
}

func loadFont(path string) (*opentype.Font, error) {
	if path == "" {
		return render.LoadEmbeddedFont()
	}
	return render.LoadFontFile(path)
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

// run executes the root command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	// Usage and help go to stdout, diagnostics to stderr.
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.ShowError(stderr, utils.Headline(err), err)
		return utils.ExitCode(err)
	}
	return 0
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
