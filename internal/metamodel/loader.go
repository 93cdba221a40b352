package metamodel

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/memento/internal/ident"
)

var (
	// ErrAlreadyDefined is returned when a type or logical name is defined twice.
	ErrAlreadyDefined = errors.New("metamodel: already defined")
	// ErrKindMismatch is returned when a catalog declaration disagrees with
	// a Go type's own definition.
	ErrKindMismatch = errors.New("metamodel: kind mismatch")
)

// Loader owns the specifications of a process. It is safe for concurrent
// use; specifications are inserted once and never replaced.
type Loader struct {
	registry *ident.Registry

	mu     sync.Mutex
	byName sync.Map // map[string]*Specification
	byType sync.Map // map[reflect.Type]*Specification
}

// NewLoader returns a loader resolving type identifiers through reg.
func NewLoader(reg *ident.Registry) *Loader {
	return &Loader{registry: reg}
}

// Registry returns the type registry used by the loader.
func (l *Loader) Registry() *ident.Registry { return l.registry }

// Define creates the specification of Go type t. Without options the kind
// is inferred (entity if the type has EntityID, serializable if it has
// MarshalBinary, value otherwise) and JSON semantics are used.
func (l *Loader) Define(t reflect.Type, opts ...Option) (*Specification, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ident.ErrInvalidArgument)
	}
	t = ident.Substitute(t)

	var o defineOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.logicalName != "" {
		if err := l.registry.Register(t, o.logicalName); err != nil {
			return nil, err
		}
	}
	id, err := l.registry.Resolve(t)
	if err != nil {
		return nil, err
	}

	spec := &Specification{
		id:        id,
		goType:    t,
		kind:      o.kind,
		semantics: o.semantics,
		keyField:  o.keyField,
	}
	if spec.kind == 0 {
		spec.kind = inferKind(t)
	}
	switch spec.semantics.(type) {
	case nil:
		spec.semantics = NewJSONSemantics(t)
	case noSemantics:
		spec.semantics = nil
	}
	if spec.features, err = buildFeatures(id, o); err != nil {
		return nil, err
	}

	if err := l.insert(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// MustDefine is like Define but panics on error.
// Use only in tests or when inputs are known to be valid.
func (l *Loader) MustDefine(t reflect.Type, opts ...Option) *Specification {
	spec, err := l.Define(t, opts...)
	if err != nil {
		panic(err)
	}
	return spec
}

// DefineRecord creates the specification of a catalog-only type.
func (l *Loader) DefineRecord(decl Declaration) (*Specification, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}
	kind, err := ParseKind(decl.Kind)
	if err != nil {
		return nil, err
	}
	id, err := ident.NewTypeIdentifier(decl.Name, decl.Class)
	if err != nil {
		return nil, err
	}
	if kind == KindEntity && decl.Key == "" {
		return nil, fmt.Errorf("record %s: entity declarations need a key field", decl.Name)
	}

	spec := &Specification{
		id:        id,
		kind:      kind,
		keyField:  decl.Key,
		semantics: RecordSemantics{logicalType: id.LogicalTypeName(), keyField: decl.Key},
	}
	if spec.features, err = buildFeatures(id, decl.options()); err != nil {
		return nil, err
	}
	if err := l.insert(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (l *Loader) insert(spec *Specification) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := spec.LogicalTypeName()
	if _, ok := l.byName.Load(name); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, name)
	}
	if spec.goType != nil {
		if _, ok := l.byType.Load(spec.goType); ok {
			return fmt.Errorf("%w: %s", ErrAlreadyDefined, spec.TypeIdentifier().ClassName())
		}
		l.byType.Store(spec.goType, spec)
	}
	l.byName.Store(name, spec)
	return nil
}

// SpecificationFor returns the specification of Go type t.
func (l *Loader) SpecificationFor(t reflect.Type) (*Specification, bool) {
	if t == nil {
		return nil, false
	}
	if v, ok := l.byType.Load(ident.Substitute(t)); ok {
		return v.(*Specification), true
	}
	return nil, false
}

// SpecificationByName returns the specification with the given logical
// type name.
func (l *Loader) SpecificationByName(logicalTypeName string) (*Specification, bool) {
	if v, ok := l.byName.Load(ident.NormalizeName(logicalTypeName)); ok {
		return v.(*Specification), true
	}
	return nil, false
}

// SpecificationOf returns the specification describing pojo. Records are
// resolved by their declared type name.
func (l *Loader) SpecificationOf(pojo any) (*Specification, bool) {
	switch r := pojo.(type) {
	case nil:
		return nil, false
	case Record:
		return l.SpecificationByName(r.Type)
	case *Record:
		if r == nil {
			return nil, false
		}
		return l.SpecificationByName(r.Type)
	}
	return l.SpecificationFor(reflect.TypeOf(pojo))
}

// Specifications returns all specifications ordered by logical type name.
func (l *Loader) Specifications() []*Specification {
	var specs []*Specification
	l.byName.Range(func(_, v any) bool {
		specs = append(specs, v.(*Specification))
		return true
	})
	slices.SortFunc(specs, func(a, b *Specification) int {
		return strings.Compare(a.LogicalTypeName(), b.LogicalTypeName())
	})
	return specs
}

// ApplyCatalog defines every declaration of cat. A declaration whose class
// matches one of the bound Go types defines that type under the declared
// logical name; all others become records.
func (l *Loader) ApplyCatalog(cat *Catalog, bound ...reflect.Type) error {
	byClass := make(map[string]reflect.Type, len(bound))
	for _, t := range bound {
		byClass[ident.ClassNameOf(t)] = ident.Substitute(t)
	}

	for _, decl := range cat.Declarations {
		t, ok := byClass[decl.Class]
		if !ok {
			if _, err := l.DefineRecord(decl); err != nil {
				return fmt.Errorf("catalog type %s: %w", decl.Name, err)
			}
			continue
		}

		kind, err := ParseKind(decl.Kind)
		if err != nil {
			return fmt.Errorf("catalog type %s: %w", decl.Name, err)
		}
		if inferred := inferKind(t); kind == KindEntity && inferred != KindEntity {
			return fmt.Errorf("catalog type %s: %w: %s has no EntityID method", decl.Name, ErrKindMismatch, decl.Class)
		}
		opts := []Option{WithLogicalName(decl.Name), WithKind(kind)}
		o := decl.options()
		opts = append(opts,
			WithProperties(o.properties...),
			WithCollections(o.collections...),
		)
		for _, a := range o.actions {
			opts = append(opts, WithAction(a.Name, a.Params...))
		}
		if _, err := l.Define(t, opts...); err != nil {
			return fmt.Errorf("catalog type %s: %w", decl.Name, err)
		}
	}
	return nil
}
