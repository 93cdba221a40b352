package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/memento"
)

// SnapshotOptions holds flags for the snapshot command.
type SnapshotOptions struct {
	*RootOptions
	Type  string
	Key   string
	Value string
	All   bool
}

// SnapshotResult is a memento token with a description of what it holds.
type SnapshotResult struct {
	Token   string `json:"token"`
	Memento string `json:"memento"`
	Hash    string `json:"hash"`
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot --type <logical-type> (--key <key> | --value <file.yaml> | --all)",
		Short: "Capture an object or collection as a memento token",
		Long: `Capture an object as a memento token.

  --key    a stored entity, captured by bookmark (lookup)
  --value  a value read from a YAML file of fields, captured by content
  --all    every stored entity of the type, as a collection

Example:
  memento snapshot --type acme.Customer --key c-1
  memento snapshot --type acme.Money --value money.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "logical type name")
	cmd.Flags().StringVarP(&opts.Key, "key", "k", "", "entity key")
	cmd.Flags().StringVar(&opts.Value, "value", "", "YAML file with the value's fields")
	cmd.Flags().BoolVar(&opts.All, "all", false, "capture every stored entity of the type")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("key", "value", "all")
	cmd.MarkFlagsOneRequired("key", "value", "all")

	return cmd
}

func runSnapshot(opts *SnapshotOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	sess, err := openSession(cfg.Model, cfg.DB, opts.logger())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to open session", err)
	}
	defer sess.Close()

	spec, err := sess.spec(opts.Type)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUnresolvedType, "unknown type", err)
	}

	var m memento.Memento
	switch {
	case opts.Key != "":
		b, err := bookmark.New(spec.LogicalTypeName(), opts.Key)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid key", err)
		}
		s, err := sess.service.MementoForBookmark(b)
		if err != nil {
			return formatter.FailMemento("snapshot failed", err)
		}
		m = s

	case opts.Value != "":
		data, err := os.ReadFile(opts.Value)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to read value", err)
		}
		var fields map[string]any
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "failed to parse value", err)
		}
		rec, err := recordFromFields(spec, fields)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid value", err)
		}
		el, err := sess.service.MementoForPojo(rec)
		if err != nil {
			return formatter.FailMemento("snapshot failed", err)
		}
		m = el

	default:
		entities, err := sess.store.List(cmd.Context(), spec.LogicalTypeName())
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, "failed to list entities", err)
		}
		pojos := make([]any, len(entities))
		for i, e := range entities {
			if pojos[i], err = spec.NewRecord(e.Payload); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("entity %s", e.Key), err)
			}
		}
		c, err := sess.service.MementoForPojos(spec.LogicalTypeName(), pojos)
		if err != nil {
			return formatter.FailMemento("snapshot failed", err)
		}
		m = c
	}

	token, err := memento.EncodeToken(m)
	if err != nil {
		return formatter.FailMemento("encode failed", err)
	}
	result := SnapshotResult{Token: token, Memento: m.String(), Hash: m.Hash()}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Token)
	})
}
