package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"goscript/internal/logging"
	"goscript/internal/settings"
)

// usageError marks a command-line parsing failure so Execute can exit with
// the conventional usage status instead of the generic one.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// recordSink, when non-nil, receives a copy of every record the script
// logger handles. Unit tests point it at a logging.BufferHandler; it stays
// nil in production.
var recordSink slog.Handler

// runScript is the entry point invoked once flags are parsed and settings
// are resolved. It's a variable so tests can intercept the resolved options
// and leftover positionals, the same way they would stub a processor.
var runScript = func(cmd *cobra.Command, opts settings.Settings, args []string) error {
	level := logging.LevelFor(opts.Verbose, opts.Quiet, opts.Silent)
	colorize := !opts.NoColor && isTerminal(cmd.ErrOrStderr())
	logger := logging.New(cmd.ErrOrStderr(), level, colorize, recordSink)

	logger.Debug("Ready to run")
	return nil
}

// NewRootCommand builds the goscript command. Each call returns a fresh
// instance so tests never share flag state.
func NewRootCommand() *cobra.Command {
	var (
		quiet      int
		silent     bool
		verbose    int
		noColor    bool
		configPath string
		initConfig bool
	)

	rootCmd := &cobra.Command{
		Use:   "goscript [flags] [args...]",
		Short: "goscript is a template for a well-behaved command-line script.",
		Long: `goscript demonstrates the scaffolding every command-line script needs:
counting verbosity flags, a silent switch, optional settings-file defaults,
and diagnostics that go to stderr only. Leftover arguments are passed
through untouched.`,
		Example: `  goscript -vv
  goscript -q input.txt
  goscript --config ./settings.toml -v
  goscript --init-config`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				return writeSampleSettings(cmd, configPath)
			}
			opts, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			opts = opts.Merge(quiet, verbose, silent, noColor)
			return runScript(cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	// Flags must precede positionals; the first non-flag token ends flag
	// parsing and everything after it is passed through verbatim.
	flags.SetInterspersed(false)
	flags.CountVarP(&quiet, "quiet", "q", "decrease the logging verbosity (repeatable)")
	flags.BoolVarP(&silent, "silent", "s", false, "silence the logger entirely")
	flags.CountVarP(&verbose, "verbose", "v", "increase the logging verbosity (repeatable)")
	flags.BoolVar(&noColor, "no-color", false, "disable colorized diagnostics")
	flags.StringVarP(&configPath, "config", "c", "", "path to a TOML settings file")
	flags.BoolVar(&initConfig, "init-config", false, "write a sample settings file and exit")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return rootCmd
}

func loadSettings(path string) (settings.Settings, error) {
	if path != "" {
		return settings.Load(path)
	}
	return settings.LoadDefault()
}

func writeSampleSettings(cmd *cobra.Command, path string) error {
	if path == "" {
		var err error
		path, err = settings.DefaultPath()
		if err != nil {
			return fmt.Errorf("no settings path given and none could be derived: %w", err)
		}
	}
	if err := settings.WriteSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample settings to %s\n", path)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute runs the root command and exits the process on failure: status 2
// for usage errors, 1 for anything else. Cobra has already printed the
// error and usage text by the time this sees the error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
