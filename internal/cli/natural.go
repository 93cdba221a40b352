package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/memento/internal/naming"
)

// NaturalName pairs an identifier with its display form.
type NaturalName struct {
	Identifier string `json:"identifier"`
	Natural    string `json:"natural"`
}

// NewNaturalCommand creates the natural command.
func NewNaturalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "natural <identifier>...",
		Short: "Print the natural (display) name of identifiers",
		Long: `Print the natural name of each identifier.

Example:
  memento natural NextAvailableDate HTMLPage version2`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNatural(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runNatural(opts *RootOptions, args []string, cmd *cobra.Command) error {
	names := make([]NaturalName, len(args))
	for i, arg := range args {
		names[i] = NaturalName{Identifier: arg, Natural: naming.NaturalName(arg)}
	}
	return opts.formatter(cmd).Result(names, func(w io.Writer) {
		for _, n := range names {
			fmt.Fprintf(w, "%s\t%s\n", n.Identifier, n.Natural)
		}
	})
}
