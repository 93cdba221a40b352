package ident

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeIdentifier identifies a domain type by its stable logical type name
// and the class name of the Go type implementing it.
//
// Two identifiers are equal iff their logical type names match; the class
// name may differ across versions while the logical name stays pinned.
type TypeIdentifier struct {
	logicalTypeName string
	className       string
}

// NewTypeIdentifier builds an identifier for types that have no Go
// representation, such as records declared only in a model catalog.
func NewTypeIdentifier(logicalTypeName, className string) (TypeIdentifier, error) {
	if logicalTypeName == "" || className == "" {
		return TypeIdentifier{}, fmt.Errorf("%w: type identifier needs logical and class name (got %q, %q)",
			ErrInvalidArgument, logicalTypeName, className)
	}
	return TypeIdentifier{logicalTypeName: NormalizeName(logicalTypeName), className: className}, nil
}

// MustTypeIdentifier is like NewTypeIdentifier but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTypeIdentifier(logicalTypeName, className string) TypeIdentifier {
	id, err := NewTypeIdentifier(logicalTypeName, className)
	if err != nil {
		panic(err)
	}
	return id
}

// LogicalTypeName returns the stable alias of the type.
func (t TypeIdentifier) LogicalTypeName() string { return t.logicalTypeName }

// ClassName returns the fully qualified name of the implementing type.
func (t TypeIdentifier) ClassName() string { return t.className }

// IsZero reports whether t was never resolved.
func (t TypeIdentifier) IsZero() bool { return t.logicalTypeName == "" }

// Equal compares logical type names only.
func (t TypeIdentifier) Equal(other TypeIdentifier) bool {
	return t.logicalTypeName == other.logicalTypeName
}

func (t TypeIdentifier) String() string {
	if t.logicalTypeName == t.className {
		return t.className
	}
	return t.logicalTypeName + " (" + t.className + ")"
}

// LogicalNamer is implemented by domain types that pin their own logical
// type name. The method is evaluated on the zero value.
type LogicalNamer interface {
	LogicalTypeName() string
}

var logicalNamerType = reflect.TypeFor[LogicalNamer]()

// ClassNameOf returns the class name of t: "<import path>.<Name>" for named
// types, or the type's own string for builtins and unnamed types.
func ClassNameOf(t reflect.Type) string {
	t = Substitute(t)
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Substitute returns the type that represents t in the metamodel.
// Pointer types are unwrapped to their element type.
func Substitute(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Registry interns TypeIdentifiers for the lifetime of the process.
//
// A Registry is created at startup and shared by everything that builds
// identifiers. It is safe for concurrent use: lookups are lock-free and
// writes insert-if-absent under a mutex.
type Registry struct {
	mu sync.Mutex
	// explicit maps reflect.Type to a logical name given via Register.
	explicit sync.Map // map[reflect.Type]string
	// byType maps reflect.Type to its interned TypeIdentifier.
	byType sync.Map // map[reflect.Type]TypeIdentifier
	// byName maps a logical name to the type that claimed it.
	byName sync.Map // map[string]reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds t to logicalName. It is idempotent for the same pair and
// fails if t is already bound to another name or the name is taken.
func (r *Registry) Register(t reflect.Type, logicalName string) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	if logicalName == "" {
		return ErrEmptyName
	}
	logicalName = NormalizeName(logicalName)
	t = Substitute(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.explicit.Load(t); ok {
		if old.(string) == logicalName {
			return nil
		}
		return fmt.Errorf("%w: %s is registered as %q, not %q",
			ErrConflictingRegistration, ClassNameOf(t), old.(string), logicalName)
	}
	if id, ok := r.byType.Load(t); ok && id.(TypeIdentifier).logicalTypeName != logicalName {
		return fmt.Errorf("%w: %s already resolved as %q",
			ErrConflictingRegistration, ClassNameOf(t), id.(TypeIdentifier).logicalTypeName)
	}
	if owner, ok := r.byName.Load(logicalName); ok && owner.(reflect.Type) != t {
		return fmt.Errorf("%w: %q is claimed by %s", ErrLogicalNameTaken, logicalName, ClassNameOf(owner.(reflect.Type)))
	}

	r.explicit.Store(t, logicalName)
	return nil
}

// Resolve returns the interned identifier for t, creating it on first use.
//
// The logical name is taken from, in order: a LogicalTypeName method on
// the type, an explicit Register call, the class name.
func (r *Registry) Resolve(t reflect.Type) (TypeIdentifier, error) {
	if t == nil {
		return TypeIdentifier{}, fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	t = Substitute(t)

	if id, ok := r.byType.Load(t); ok {
		return id.(TypeIdentifier), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byType.Load(t); ok {
		return id.(TypeIdentifier), nil
	}

	id := TypeIdentifier{
		logicalTypeName: r.logicalNameOf(t),
		className:       ClassNameOf(t),
	}
	if owner, ok := r.byName.Load(id.logicalTypeName); ok && owner.(reflect.Type) != t {
		return TypeIdentifier{}, fmt.Errorf("%w: %q is claimed by %s, cannot bind %s",
			ErrLogicalNameTaken, id.logicalTypeName, ClassNameOf(owner.(reflect.Type)), id.className)
	}

	r.byName.Store(id.logicalTypeName, t)
	r.byType.Store(t, id)
	return id, nil
}

// Of is like Resolve but panics on error. A nil type is a caller defect.
func (r *Registry) Of(t reflect.Type) TypeIdentifier {
	id, err := r.Resolve(t)
	if err != nil {
		panic(err)
	}
	return id
}

// OfValue resolves the type of v.
func (r *Registry) OfValue(v any) (TypeIdentifier, error) {
	if v == nil {
		return TypeIdentifier{}, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}
	return r.Resolve(reflect.TypeOf(v))
}

// Lookup returns the type that owns logicalName, if any type has been
// resolved under that name.
func (r *Registry) Lookup(logicalName string) (reflect.Type, bool) {
	if v, ok := r.byName.Load(NormalizeName(logicalName)); ok {
		return v.(reflect.Type), true
	}
	return nil, false
}

// Len returns the number of interned identifiers.
func (r *Registry) Len() int {
	n := 0
	r.byType.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// logicalNameOf must be called with r.mu held.
func (r *Registry) logicalNameOf(t reflect.Type) string {
	if name := selfDeclaredName(t); name != "" {
		return NormalizeName(name)
	}
	if name, ok := r.explicit.Load(t); ok {
		return name.(string)
	}
	return ClassNameOf(t)
}

// selfDeclaredName calls LogicalTypeName on a zero value of t. A pointer
// to the zero value is used so pointer-receiver methods are found too.
func selfDeclaredName(t reflect.Type) string {
	pt := reflect.PointerTo(t)
	if !pt.Implements(logicalNamerType) {
		return ""
	}
	if t.Implements(logicalNamerType) {
		return reflect.Zero(t).Interface().(LogicalNamer).LogicalTypeName()
	}
	return reflect.New(t).Interface().(LogicalNamer).LogicalTypeName()
}
