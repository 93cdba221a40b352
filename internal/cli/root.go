package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/memento/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DB         string
	Model      string
	LogFormat  string

	// Config and Logger are set before any subcommand runs. Commands built
	// directly in tests fall back to defaults.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the memento CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "memento",
		Short: "memento - snapshot and restore domain objects",
		Long: `Inspect feature identifiers and capture domain objects as mementos.

Types are declared in a CUE catalog; entities live in a SQLite store.
A memento token can be restored later, in another process, as long as
the catalog still knows its logical type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := opts.load(v, cmd.ErrOrStderr()); err != nil {
				return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ./memento.toml)")
	flags.StringVar(&opts.DB, "db", "", "entity store path")
	flags.StringVar(&opts.Model, "model", "", "CUE catalog directory")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	_ = v.BindPFlag(config.KeyOutputFormat, flags.Lookup("format"))
	_ = v.BindPFlag(config.KeyDB, flags.Lookup("db"))
	_ = v.BindPFlag(config.KeyModel, flags.Lookup("model"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	cmd.AddCommand(NewNaturalCommand(opts))
	cmd.AddCommand(NewFeaturesCommand(opts))
	cmd.AddCommand(NewBookmarkCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// load resolves the configuration and sets up logging.
func (o *RootOptions) load(v *viper.Viper, stderr io.Writer) error {
	cfg, err := config.Load(v, o.ConfigPath)
	if err != nil {
		return err
	}
	o.Config = &cfg
	o.Format = cfg.Output.Format
	o.Logger = newLogger(stderr, cfg, o.Verbose)
	return nil
}

func (o *RootOptions) settings() config.Config {
	if o.Config != nil {
		return *o.Config
	}
	cfg := config.Default()
	if o.DB != "" {
		cfg.DB = o.DB
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	return cfg
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
