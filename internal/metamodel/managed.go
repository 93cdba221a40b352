package metamodel

import "slices"

// Variant tells which shape a ManagedObject has.
type Variant int

const (
	// VariantUnspecified wraps a pojo the metamodel knows nothing about.
	VariantUnspecified Variant = iota
	// VariantEmpty is an absent reference of a known type.
	VariantEmpty
	// VariantScalar is one pojo with its specification.
	VariantScalar
	// VariantPacked is an ordered group of managed objects of one element type.
	VariantPacked
)

func (v Variant) String() string {
	switch v {
	case VariantUnspecified:
		return "unspecified"
	case VariantEmpty:
		return "empty"
	case VariantScalar:
		return "scalar"
	case VariantPacked:
		return "packed"
	}
	return "unknown"
}

// ManagedObject attaches a pojo to its resolved specification.
type ManagedObject struct {
	variant  Variant
	spec     *Specification
	pojo     any
	elements []*ManagedObject
}

// Unspecified wraps a pojo without metamodel.
func Unspecified(pojo any) *ManagedObject {
	return &ManagedObject{variant: VariantUnspecified, pojo: pojo}
}

// Empty is an absent reference of type spec.
func Empty(spec *Specification) *ManagedObject {
	return &ManagedObject{variant: VariantEmpty, spec: spec}
}

// Scalar wraps pojo with its specification.
func Scalar(spec *Specification, pojo any) *ManagedObject {
	return &ManagedObject{variant: VariantScalar, spec: spec, pojo: pojo}
}

// Packed groups elements under the element type spec. Order is kept and
// duplicates are allowed.
func Packed(elementSpec *Specification, elements ...*ManagedObject) *ManagedObject {
	return &ManagedObject{variant: VariantPacked, spec: elementSpec, elements: slices.Clone(elements)}
}

func (m *ManagedObject) Variant() Variant { return m.variant }

// Specification is nil for unspecified objects and the element type for
// packed ones.
func (m *ManagedObject) Specification() *Specification { return m.spec }

// Pojo is nil for empty and packed objects.
func (m *ManagedObject) Pojo() any { return m.pojo }

// LogicalTypeName is empty for unspecified objects.
func (m *ManagedObject) LogicalTypeName() string {
	if m.spec == nil {
		return ""
	}
	return m.spec.LogicalTypeName()
}

// Elements returns the packed elements in order.
func (m *ManagedObject) Elements() []*ManagedObject { return slices.Clone(m.elements) }

// Pojos returns the pojos of packed elements in order; empty elements
// contribute nil.
func (m *ManagedObject) Pojos() []any {
	out := make([]any, len(m.elements))
	for i, e := range m.elements {
		if e != nil {
			out[i] = e.pojo
		}
	}
	return out
}
