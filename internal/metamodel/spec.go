package metamodel

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/memento/internal/ident"
	"github.com/roach88/memento/internal/ir"
)

// Identifiable is implemented by entities that know their own key.
type Identifiable interface {
	EntityID() string
}

var (
	identifiableType    = reflect.TypeFor[Identifiable]()
	binaryMarshalerType = reflect.TypeFor[encoding.BinaryMarshaler]()
)

// Specification is the metamodel of one domain type. It is immutable once
// returned by the Loader.
type Specification struct {
	id        ident.TypeIdentifier
	goType    reflect.Type
	kind      Kind
	semantics Semantics
	keyField  string
	features  []ident.FeatureIdentifier
}

func (s *Specification) TypeIdentifier() ident.TypeIdentifier { return s.id }
func (s *Specification) LogicalTypeName() string { return s.id.LogicalTypeName() }
func (s *Specification) Kind() Kind { return s.kind }

// Type returns the Go type, or nil for catalog records.
func (s *Specification) Type() reflect.Type { return s.goType }

// IsRecord reports whether instances are Record values.
func (s *Specification) IsRecord() bool { return s.goType == nil }

// Semantics returns the value semantics, or nil if the type has none.
func (s *Specification) Semantics() Semantics { return s.semantics }

// KeyField names the field carrying the key of entity records.
func (s *Specification) KeyField() string { return s.keyField }

// Features returns the class identifier followed by the declared members.
func (s *Specification) Features() []ident.FeatureIdentifier {
	return slices.Clone(s.features)
}

// Feature finds a declared member by name.
func (s *Specification) Feature(member string) (ident.FeatureIdentifier, bool) {
	for _, f := range s.features {
		if f.MemberName() == member && f.Kind() != ident.KindClass {
			return f, true
		}
	}
	return ident.FeatureIdentifier{}, false
}

// NewRecord builds a record of this type from its fields. It fails for
// types backed by a Go type.
func (s *Specification) NewRecord(fields ir.IRObject) (Record, error) {
	rs, ok := s.semantics.(RecordSemantics)
	if !ok {
		return Record{}, fmt.Errorf("%s is not a record type", s.LogicalTypeName())
	}
	return rs.newRecord(fields)
}

func (s *Specification) String() string {
	return fmt.Sprintf("%s[%s]", s.id.LogicalTypeName(), s.kind)
}

// ActionDecl declares an action and the logical or class names of its
// parameter types.
type ActionDecl struct {
	Name   string   `validate:"required"`
	Params []string `validate:"dive,required"`
}

type defineOptions struct {
	logicalName string
	kind        Kind
	semantics   Semantics
	keyField    string
	properties  []string
	collections []string
	actions     []ActionDecl
}

// Option configures Loader.Define.
type Option func(*defineOptions)

// WithLogicalName registers the logical type name before resolving the type.
func WithLogicalName(name string) Option {
	return func(o *defineOptions) { o.logicalName = name }
}

// WithKind overrides the inferred kind.
func WithKind(k Kind) Option {
	return func(o *defineOptions) { o.kind = k }
}

// WithSemantics replaces the default JSON semantics.
func WithSemantics(s Semantics) Option {
	return func(o *defineOptions) { o.semantics = s }
}

// WithoutSemantics leaves the type without value semantics.
func WithoutSemantics() Option {
	return func(o *defineOptions) { o.semantics = noSemantics{} }
}

// WithKeyField names the key field of entity records.
func WithKeyField(name string) Option {
	return func(o *defineOptions) { o.keyField = name }
}

// WithProperties declares properties.
func WithProperties(names ...string) Option {
	return func(o *defineOptions) { o.properties = append(o.properties, names...) }
}

// WithCollections declares collections.
func WithCollections(names ...string) Option {
	return func(o *defineOptions) { o.collections = append(o.collections, names...) }
}

// WithAction declares an action with ordered parameter type names.
func WithAction(name string, params ...string) Option {
	return func(o *defineOptions) {
		o.actions = append(o.actions, ActionDecl{Name: name, Params: params})
	}
}

// noSemantics marks an explicit opt-out; it never reaches a Specification.
type noSemantics struct{}

func (noSemantics) Decompose(any) (ir.IRObject, error) { return nil, fmt.Errorf("no semantics") }
func (noSemantics) Compose(ir.IRObject) (any, error) { return nil, fmt.Errorf("no semantics") }

// inferKind picks a kind from the methods a type implements.
func inferKind(t reflect.Type) Kind {
	pt := reflect.PointerTo(t)
	switch {
	case pt.Implements(identifiableType):
		return KindEntity
	case pt.Implements(binaryMarshalerType):
		return KindSerializable
	default:
		return KindValue
	}
}

func buildFeatures(id ident.TypeIdentifier, o defineOptions) ([]ident.FeatureIdentifier, error) {
	features := []ident.FeatureIdentifier{ident.ClassIdentifier(id)}
	for _, name := range append(slices.Clone(o.properties), o.collections...) {
		f, err := ident.PropertyOrCollectionIdentifier(id, name)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	for _, a := range o.actions {
		f, err := ident.ActionIdentifier(id, a.Name, a.Params...)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}
