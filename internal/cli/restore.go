package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/memento"
	"github.com/roach88/memento/internal/metamodel"
)

// RestoredObject is the printable form of a reconstructed managed object.
type RestoredObject struct {
	Variant     string           `json:"variant"`
	LogicalType string           `json:"logical_type"`
	Fields      any              `json:"fields,omitempty"`
	Elements    []RestoredObject `json:"elements,omitempty"`
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <token>",
		Short: "Reconstruct the object captured in a memento token",
		Long: `Decode a memento token and reconstruct the object it captured.

Values are rebuilt from their fields; entities are looked up again in the
store, so a deleted entity fails with a lookup miss (E204).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRestore(opts *RootOptions, token string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	m, err := memento.DecodeToken(token)
	if err != nil {
		return formatter.FailMemento("invalid token", err)
	}
	formatter.VerboseLog("Decoded %s", m)

	sess, err := openSession(cfg.Model, cfg.DB, opts.logger())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to open session", err)
	}
	defer sess.Close()

	obj, err := sess.service.ReconstructObject(cmd.Context(), m)
	if err != nil {
		return formatter.FailMemento("restore failed", err)
	}
	restored, err := describe(obj)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSerializationFailure, "restore failed", err)
	}

	return formatter.Result(restored, func(w io.Writer) {
		writeRestored(w, restored, "")
	})
}

// describe turns a managed object into its printable form. Fields are the
// object's decomposition.
func describe(obj *metamodel.ManagedObject) (RestoredObject, error) {
	out := RestoredObject{Variant: obj.Variant().String(), LogicalType: obj.LogicalTypeName()}
	switch obj.Variant() {
	case metamodel.VariantScalar:
		sem := obj.Specification().Semantics()
		if sem == nil {
			out.Fields = fmt.Sprint(obj.Pojo())
			return out, nil
		}
		decomp, err := sem.Decompose(obj.Pojo())
		if err != nil {
			return RestoredObject{}, err
		}
		out.Fields = ir.ToGo(decomp)
	case metamodel.VariantPacked:
		out.Elements = []RestoredObject{}
		for _, e := range obj.Elements() {
			d, err := describe(e)
			if err != nil {
				return RestoredObject{}, err
			}
			out.Elements = append(out.Elements, d)
		}
	}
	return out, nil
}

func writeRestored(w io.Writer, r RestoredObject, indent string) {
	fmt.Fprintf(w, "%s%s %s", indent, r.Variant, r.LogicalType)
	if r.Fields != nil {
		fmt.Fprintf(w, " %v", r.Fields)
	}
	fmt.Fprintln(w)
	for _, e := range r.Elements {
		writeRestored(w, e, indent+"  ")
	}
}
