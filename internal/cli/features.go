package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/memento/internal/ident"
	"github.com/roach88/memento/internal/metamodel"
)

// FeaturesOptions holds flags for the features command.
type FeaturesOptions struct {
	*RootOptions
	Delimiter string
}

// FeatureRow is one feature identifier as printed by the features command.
type FeatureRow struct {
	Kind           string   `json:"kind"`
	Full           string   `json:"full"`
	Logical        string   `json:"logical"`
	ClassNatural   string   `json:"class_natural"`
	MemberNatural  string   `json:"member_natural,omitempty"`
	ParamNatural   []string `json:"param_natural,omitempty"`
	TranslationCtx string   `json:"translation_context"`
	Key            string   `json:"key"`
}

// NewFeaturesCommand creates the features command.
func NewFeaturesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeaturesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "features <model-dir>",
		Short: "List the feature identifiers declared in a catalog",
		Long: `Load a CUE catalog and list every feature identifier it declares:
classes, properties, collections and actions, ordered by full identity.

The logical form uses the logical type name and is stable across class
renames; the full form is for logs only.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Delimiter, "delimiter", "d", "#", "delimiter between type and member in the logical form")
	return cmd
}

func runFeatures(opts *FeaturesOptions, modelDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, err := metamodel.LoadCatalog(modelDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "catalog directory not found", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load catalog", err)
	}
	loader := metamodel.NewLoader(ident.NewRegistry())
	if err := loader.ApplyCatalog(cat); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "invalid catalog", err)
	}
	formatter.VerboseLog("Loaded %d type(s) from %s", len(cat.Declarations), modelDir)

	var features []ident.FeatureIdentifier
	for _, spec := range loader.Specifications() {
		features = append(features, spec.Features()...)
	}
	ident.SortFeatures(features)

	rows := make([]FeatureRow, len(features))
	for i, f := range features {
		rows[i] = FeatureRow{
			Kind:           f.Kind().String(),
			Full:           f.FullIdentityString(),
			Logical:        f.LogicalIdentityString(opts.Delimiter),
			ClassNatural:   f.ClassNaturalName(),
			MemberNatural:  f.MemberNaturalName(),
			ParamNatural:   f.MemberParameterClassNaturalNames(),
			TranslationCtx: f.TranslationContext(),
			Key:            f.Key(),
		}
	}

	return formatter.Result(rows, func(w io.Writer) {
		for _, r := range rows {
			display := r.ClassNatural
			if r.MemberNatural != "" {
				display += " / " + r.MemberNatural
			}
			if len(r.ParamNatural) > 0 {
				display += " (" + strings.Join(r.ParamNatural, ", ") + ")"
			}
			fmt.Fprintf(w, "%-24s %-48s %s\n", r.Kind, r.Logical, display)
		}
	})
}
