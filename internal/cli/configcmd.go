package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/memento/internal/config"
)

// ConfigInitOptions holds flags for the config init command.
type ConfigInitOptions struct {
	*RootOptions
	Force bool
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the memento configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigInitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a configuration file with default settings",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "memento.toml"
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigInit(opts, path, cmd)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func runConfigInit(opts *ConfigInitOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("%s already exists (use --force)", path), nil)
	}
	if err := config.Write(path, config.Default()); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write config", err)
	}

	return formatter.Result(map[string]string{"path": path}, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %s\n", path)
	})
}
