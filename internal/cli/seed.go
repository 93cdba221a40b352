package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
)

// Fixtures is the YAML document read by the seed command:
//
//	entities:
//	  - type: acme.Customer
//	    fields: {id: c-1, name: Alice}
type Fixtures struct {
	Entities []FixtureEntity `yaml:"entities"`
}

// FixtureEntity is one entity to store.
type FixtureEntity struct {
	Type   string         `yaml:"type"`
	Fields map[string]any `yaml:"fields"`
}

// SeedResult lists the bookmarks written by the seed command.
type SeedResult struct {
	Count     int      `json:"count"`
	Bookmarks []string `json:"bookmarks"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Write entity fixtures into the store",
		Long: `Write the entities listed in a YAML fixtures file into the entity store.

Each entity's type must be declared in the catalog as an entity with a
key property. Writing the same fixtures twice is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fx, nil
}

// recordFromFields builds a catalog record from YAML fields.
func recordFromFields(spec *metamodel.Specification, fields map[string]any) (metamodel.Record, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	v, err := ir.FromGo(fields)
	if err != nil {
		return metamodel.Record{}, fmt.Errorf("%s fields: %w", spec.LogicalTypeName(), err)
	}
	return spec.NewRecord(v.(ir.IRObject))
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	fx, err := LoadFixtures(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "failed to read fixtures", err)
	}

	sess, err := openSession(cfg.Model, cfg.DB, opts.logger())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to open session", err)
	}
	defer sess.Close()

	result := SeedResult{Bookmarks: []string{}}
	for i, e := range fx.Entities {
		spec, err := sess.spec(e.Type)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeUnresolvedType, fmt.Sprintf("entity %d", i), err)
		}
		rec, err := recordFromFields(spec, e.Fields)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("entity %d", i), err)
		}
		b, err := sess.manager.Save(cmd.Context(), rec)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("entity %d", i), err)
		}
		result.Bookmarks = append(result.Bookmarks, b.String())
	}
	result.Count = len(result.Bookmarks)

	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %d entities\n", result.Count)
		for _, b := range result.Bookmarks {
			fmt.Fprintf(w, "  %s\n", b)
		}
	})
}
