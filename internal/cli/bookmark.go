package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/memento/internal/bookmark"
)

// BookmarkInfo is the parsed form of a bookmark string.
type BookmarkInfo struct {
	LogicalType string `json:"logical_type"`
	Key         string `json:"key"`
	Bookmark    string `json:"bookmark"`
}

// NewBookmarkCommand creates the bookmark command.
func NewBookmarkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark <type:key>",
		Short: "Parse a bookmark and print its parts",
		Long: `Parse a bookmark of the form <logical-type>:<key>.

The key is everything after the first colon, so keys may contain colons.

Example:
  memento bookmark acme.Customer:c-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookmark(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runBookmark(opts *RootOptions, s string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	b, err := bookmark.Parse(s)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid bookmark", err)
	}
	info := BookmarkInfo{LogicalType: b.LogicalTypeName(), Key: b.Key(), Bookmark: b.String()}
	return formatter.Result(info, func(w io.Writer) {
		fmt.Fprintf(w, "type: %s\nkey:  %s\n", info.LogicalType, info.Key)
	})
}
