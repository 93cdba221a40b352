package metamodel

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Declaration is one type declared in a catalog:
//
//	types: "acme.Customer": {
//		class: "github.com/acme/shop.Customer"
//		kind:  "entity"
//		key:   "id"
//		properties: ["id", "name", "email"]
//		collections: ["orders"]
//		actions: placeOrder: params: ["acme.Product", "int"]
//	}
type Declaration struct {
	Name        string       `validate:"required"`
	Class       string       `validate:"required"`
	Kind        string       `validate:"required,oneof=value entity viewmodel serializable"`
	Key         string
	Properties  []string     `validate:"dive,required"`
	Collections []string     `validate:"dive,required"`
	Actions     []ActionDecl `validate:"dive"`
	Pos         token.Pos    `validate:"-"`
}

// Validate checks the declaration's required fields.
func (d Declaration) Validate() error {
	if err := validate.Struct(d); err != nil {
		return &CatalogError{Type: d.Name, Message: formatValidationError(err), Pos: d.Pos}
	}
	if d.Key != "" && !slices.Contains(d.Properties, d.Key) {
		return &CatalogError{Type: d.Name, Field: "key", Message: fmt.Sprintf("key %q is not a declared property", d.Key), Pos: d.Pos}
	}
	return nil
}

func (d Declaration) options() defineOptions {
	return defineOptions{
		properties:  d.Properties,
		collections: d.Collections,
		actions:     d.Actions,
	}
}

// Catalog is the set of declarations loaded from CUE, ordered by name.
type Catalog struct {
	Declarations []Declaration
}

// Lookup finds a declaration by logical type name.
func (c *Catalog) Lookup(name string) (Declaration, bool) {
	for _, d := range c.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// CatalogError reports a malformed declaration with its CUE position.
type CatalogError struct {
	Type    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CatalogError) Error() string {
	where := e.Type
	if e.Field != "" {
		where += "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// LoadCatalog loads every CUE file of dir as one instance and parses it.
func LoadCatalog(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog directory: not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("catalog: no CUE instances in %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, fmt.Errorf("catalog: loading CUE files: %w", err)
	}

	v := ctx.BuildInstance(instances[0])
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return ParseCatalog(v)
}

// CompileCatalog parses catalog source held in memory.
func CompileCatalog(src string) (*Catalog, error) {
	v := cuecontext.New().CompileString(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return ParseCatalog(v)
}

// ParseCatalog reads the "types" struct of v.
func ParseCatalog(v cue.Value) (*Catalog, error) {
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CatalogError{Type: "types", Message: "catalog has no types", Pos: v.Pos()}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	cat := &Catalog{}
	for iter.Next() {
		decl, err := parseDeclaration(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := decl.Validate(); err != nil {
			return nil, err
		}
		cat.Declarations = append(cat.Declarations, decl)
	}

	slices.SortFunc(cat.Declarations, func(a, b Declaration) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cat, nil
}

func parseDeclaration(name string, v cue.Value) (Declaration, error) {
	decl := Declaration{Name: name, Pos: v.Pos()}

	var err error
	if decl.Class, err = lookupString(v, "class"); err != nil {
		return decl, err
	}
	if decl.Kind, err = lookupString(v, "kind"); err != nil {
		return decl, err
	}
	if decl.Key, err = lookupString(v, "key"); err != nil {
		return decl, err
	}
	if decl.Properties, err = lookupStrings(v, "properties"); err != nil {
		return decl, err
	}
	if decl.Collections, err = lookupStrings(v, "collections"); err != nil {
		return decl, err
	}

	actionsVal := v.LookupPath(cue.ParsePath("actions"))
	if !actionsVal.Exists() {
		return decl, nil
	}
	iter, err := actionsVal.Fields()
	if err != nil {
		return decl, formatCUEError(err)
	}
	for iter.Next() {
		params, err := lookupStrings(iter.Value(), "params")
		if err != nil {
			return decl, err
		}
		decl.Actions = append(decl.Actions, ActionDecl{Name: iter.Selector().Unquoted(), Params: params})
	}
	return decl, nil
}

// lookupString returns "" for absent optional fields.
func lookupString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupStrings(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError keeps the first CUE error with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CatalogError{Type: "cue", Message: err.Error()}
	}
	first := errs[0]
	catErr := &CatalogError{Type: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		catErr.Pos = positions[0]
	}
	return catErr
}

func formatValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
