package memento

import (
	"fmt"
	"strings"

	"github.com/roach88/memento/internal/ir"
)

// Memento is a snapshot of an object or collection. Implementations are
// Empty, Scalar and Collection; the set is closed.
type Memento interface {
	// LogicalTypeName is the captured type, or the element type for
	// collections.
	LogicalTypeName() string
	// Equal reports whether other is the same variant of the same type
	// with an equal payload.
	Equal(other Memento) bool
	// Hash is consistent with Equal.
	Hash() string
	// Accept calls the visitor method for the concrete variant.
	Accept(v Visitor) error
	String() string

	sealed()
	// isNil reports a typed nil pointer held in the interface.
	isNil() bool
}

// Element is a memento that may appear inside a Collection. Collections do
// not nest.
type Element interface {
	Memento
	element()
}

// Visitor handles each memento variant.
type Visitor interface {
	VisitEmpty(m *Empty) error
	VisitScalar(m *Scalar) error
	VisitCollection(m *Collection) error
}

var (
	_ Element = (*Empty)(nil)
	_ Element = (*Scalar)(nil)
	_ Memento = (*Collection)(nil)
)

// Empty is an absent reference of a known type.
type Empty struct {
	logicalType string
	hash        string
}

// NewEmpty returns the empty memento of logicalType.
func NewEmpty(logicalType string) (*Empty, error) {
	if logicalType == "" {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "empty memento needs a logical type")
	}
	return &Empty{
		logicalType: logicalType,
		hash:        ir.HashWithDomain(ir.DomainEmpty, []byte(logicalType)),
	}, nil
}

func (m *Empty) LogicalTypeName() string { return m.logicalType }
func (m *Empty) Hash() string { return m.hash }
func (m *Empty) Accept(v Visitor) error { return v.VisitEmpty(m) }
func (m *Empty) String() string { return "empty(" + m.logicalType + ")" }
func (m *Empty) sealed() {}
func (m *Empty) isNil() bool { return m == nil }
func (m *Empty) element() {}

func (m *Empty) Equal(other Memento) bool {
	o, ok := other.(*Empty)
	return ok && o != nil && m.logicalType == o.logicalType
}

// Scalar is one object captured by a single recreate strategy.
type Scalar struct {
	logicalType string
	payload     Payload
	hash        string
}

func newScalar(logicalType string, p Payload) *Scalar {
	return &Scalar{
		logicalType: logicalType,
		payload:     p,
		hash:        p.digest(logicalType),
	}
}

func (m *Scalar) LogicalTypeName() string { return m.logicalType }
func (m *Scalar) Strategy() Strategy { return m.payload.Strategy() }
func (m *Scalar) Hash() string { return m.hash }
func (m *Scalar) Accept(v Visitor) error { return v.VisitScalar(m) }
func (m *Scalar) sealed() {}
func (m *Scalar) isNil() bool { return m == nil }
func (m *Scalar) element() {}

// Payload returns the strategy payload. Type-switch on ValuePayload,
// LookupPayload or SerializablePayload to inspect it.
func (m *Scalar) Payload() Payload { return m.payload }

func (m *Scalar) String() string {
	return fmt.Sprintf("%s(%s)", m.payload.Strategy(), m.logicalType)
}

func (m *Scalar) Equal(other Memento) bool {
	o, ok := other.(*Scalar)
	if !ok || o == nil || m.logicalType != o.logicalType {
		return false
	}
	return m.payload.equal(o.payload)
}

// Collection is an ordered list of elements of one element type.
// Duplicates and order are kept.
type Collection struct {
	elementType string
	elements    []Element
	hash        string
}

// NewCollection returns a collection memento. Nil elements are rejected.
func NewCollection(elementType string, elements ...Element) (*Collection, error) {
	if elementType == "" {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "collection memento needs an element type")
	}
	var sb strings.Builder
	sb.WriteString(elementType)
	for i, e := range elements {
		if e == nil || e.isNil() {
			return nil, newError(ErrCodeInvalidArgument, elementType, nil, "element %d is nil", i)
		}
		sb.WriteByte(0)
		sb.WriteString(e.Hash())
	}
	return &Collection{
		elementType: elementType,
		elements:    append([]Element(nil), elements...),
		hash:        ir.HashWithDomain(ir.DomainCollection, []byte(sb.String())),
	}, nil
}

func (m *Collection) LogicalTypeName() string { return m.elementType }
func (m *Collection) Len() int { return len(m.elements) }
func (m *Collection) Hash() string { return m.hash }
func (m *Collection) Accept(v Visitor) error { return v.VisitCollection(m) }
func (m *Collection) sealed() {}
func (m *Collection) isNil() bool { return m == nil }

// Elements returns the elements in order.
func (m *Collection) Elements() []Element {
	return append([]Element(nil), m.elements...)
}

func (m *Collection) String() string {
	return fmt.Sprintf("collection(%s)[%d]", m.elementType, len(m.elements))
}

func (m *Collection) Equal(other Memento) bool {
	o, ok := other.(*Collection)
	if !ok || o == nil || m.elementType != o.elementType || len(m.elements) != len(o.elements) {
		return false
	}
	for i := range m.elements {
		if !m.elements[i].Equal(o.elements[i]) {
			return false
		}
	}
	return true
}
