package memento

import (
	"bytes"
	"context"
	"encoding"
	"encoding/gob"
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
	"github.com/roach88/memento/internal/objects"
)

// Strategy names how a Scalar recreates its object.
type Strategy int

const (
	StrategyValue Strategy = iota + 1
	StrategyLookup
	StrategySerializable
)

var strategyNames = map[Strategy]string{
	StrategyValue:        "value",
	StrategyLookup:       "lookup",
	StrategySerializable: "serializable",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	for st, name := range strategyNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// Payload is the strategy-specific content of a Scalar. Implementations
// are ValuePayload, LookupPayload and SerializablePayload.
type Payload interface {
	Strategy() Strategy

	equal(other Payload) bool
	digest(logicalType string) string
	reconstruct(ctx context.Context, env resolver, logicalType string) (*metamodel.ManagedObject, error)
}

// resolver is what reconstruction consults.
type resolver struct {
	loader  *metamodel.Loader
	objects objects.ObjectManager
}

func (r resolver) specification(logicalType string) (*metamodel.Specification, error) {
	spec, ok := r.loader.SpecificationByName(logicalType)
	if !ok {
		return nil, newError(ErrCodeUnresolvedType, logicalType, nil, "no specification")
	}
	return spec, nil
}

// ValuePayload holds a value's decomposition.
type ValuePayload struct {
	decomposition ir.IRObject
	canonical     []byte
}

// NewValue returns a VALUE memento of logicalType. The decomposition must
// be canonically encodable.
func NewValue(logicalType string, decomposition ir.IRObject) (*Scalar, error) {
	if logicalType == "" {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "value memento needs a logical type")
	}
	if decomposition == nil {
		decomposition = ir.IRObject{}
	}
	canonical, err := ir.MarshalCanonical(decomposition)
	if err != nil {
		return nil, newError(ErrCodeSerializationFailure, logicalType, err, "decomposition is not canonical")
	}
	return newScalar(logicalType, ValuePayload{
		decomposition: decomposition.Clone(),
		canonical:     canonical,
	}), nil
}

func (ValuePayload) Strategy() Strategy { return StrategyValue }

// Decomposition returns a copy of the captured fields.
func (p ValuePayload) Decomposition() ir.IRObject { return p.decomposition.Clone() }

func (p ValuePayload) equal(other Payload) bool {
	o, ok := other.(ValuePayload)
	return ok && bytes.Equal(p.canonical, o.canonical)
}

func (p ValuePayload) digest(logicalType string) string {
	return ir.MustValueHash(logicalType, p.decomposition)
}

func (p ValuePayload) reconstruct(_ context.Context, env resolver, logicalType string) (*metamodel.ManagedObject, error) {
	spec, err := env.specification(logicalType)
	if err != nil {
		return nil, err
	}
	if spec.Semantics() == nil {
		return nil, newError(ErrCodeUnresolvedType, logicalType, nil, "type has no value semantics")
	}
	pojo, err := spec.Semantics().Compose(p.decomposition.Clone())
	if err != nil {
		return nil, newError(ErrCodeSerializationFailure, logicalType, err, "compose value")
	}
	return metamodel.Scalar(spec, pojo), nil
}

// LookupPayload holds the bookmark of an entity.
type LookupPayload struct {
	bookmark bookmark.Bookmark
}

// NewLookup returns a LOOKUP memento for b.
func NewLookup(b bookmark.Bookmark) (*Scalar, error) {
	if b.IsZero() || b.Key() == "" {
		return nil, newError(ErrCodeInvalidArgument, b.LogicalTypeName(), bookmark.ErrInvalid, "lookup memento needs a bookmark")
	}
	return newScalar(b.LogicalTypeName(), LookupPayload{bookmark: b}), nil
}

func (LookupPayload) Strategy() Strategy { return StrategyLookup }

func (p LookupPayload) Bookmark() bookmark.Bookmark { return p.bookmark }

func (p LookupPayload) equal(other Payload) bool {
	o, ok := other.(LookupPayload)
	return ok && p.bookmark.Equal(o.bookmark)
}

func (p LookupPayload) digest(string) string {
	return ir.HashWithDomain(ir.DomainLookup, []byte(p.bookmark.String()))
}

func (p LookupPayload) reconstruct(ctx context.Context, env resolver, logicalType string) (*metamodel.ManagedObject, error) {
	obj, err := env.objects.ResolveBookmark(ctx, p.bookmark)
	switch {
	case err == nil && obj == nil:
		return nil, newError(ErrCodeLookupMiss, logicalType, nil, "bookmark %s resolved to nothing", p.bookmark)
	case err == nil:
		return obj, nil
	case errors.Is(err, objects.ErrNotFound):
		return nil, newError(ErrCodeLookupMiss, logicalType, err, "bookmark %s", p.bookmark)
	case errors.Is(err, objects.ErrUnknownType), errors.Is(err, objects.ErrNotEntity):
		return nil, newError(ErrCodeUnresolvedType, logicalType, err, "bookmark %s", p.bookmark)
	case errors.Is(err, objects.ErrInvalidKey):
		return nil, newError(ErrCodeSerializationFailure, logicalType, err, "bookmark %s", p.bookmark)
	default:
		return nil, fmt.Errorf("resolve bookmark %s: %w", p.bookmark, err)
	}
}

// SerializablePayload holds opaque bytes.
type SerializablePayload struct {
	data []byte
}

// NewSerializable returns a SERIALIZABLE memento carrying data.
func NewSerializable(logicalType string, data []byte) (*Scalar, error) {
	if logicalType == "" {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "serializable memento needs a logical type")
	}
	return newScalar(logicalType, SerializablePayload{data: bytes.Clone(data)}), nil
}

func (SerializablePayload) Strategy() Strategy { return StrategySerializable }

// Bytes returns a copy of the serialized form.
func (p SerializablePayload) Bytes() []byte { return bytes.Clone(p.data) }

func (p SerializablePayload) equal(other Payload) bool {
	o, ok := other.(SerializablePayload)
	return ok && bytes.Equal(p.data, o.data)
}

func (p SerializablePayload) digest(logicalType string) string {
	buf := make([]byte, 0, len(logicalType)+1+len(p.data))
	buf = append(buf, logicalType...)
	buf = append(buf, 0)
	buf = append(buf, p.data...)
	return ir.HashWithDomain(ir.DomainSerializable, buf)
}

func (p SerializablePayload) reconstruct(_ context.Context, env resolver, logicalType string) (*metamodel.ManagedObject, error) {
	spec, err := env.specification(logicalType)
	if err != nil {
		return nil, err
	}
	if spec.Type() == nil {
		return nil, newError(ErrCodeUnresolvedType, logicalType, nil, "record types cannot be deserialized")
	}
	pojo, err := unmarshalPojo(spec.Type(), p.data)
	if err != nil {
		return nil, newError(ErrCodeSerializationFailure, logicalType, err, "deserialize %s", spec.TypeIdentifier().ClassName())
	}
	return metamodel.Scalar(spec, pojo), nil
}

var (
	binaryMarshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
)

// binaryMarshaler returns pojo as a BinaryMarshaler, also when only the
// pointer type implements it.
func binaryMarshaler(pojo any) (encoding.BinaryMarshaler, bool) {
	if bm, ok := pojo.(encoding.BinaryMarshaler); ok {
		return bm, true
	}
	v := reflect.ValueOf(pojo)
	if !v.IsValid() || v.Kind() == reflect.Pointer || !reflect.PointerTo(v.Type()).Implements(binaryMarshalerType) {
		return nil, false
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface().(encoding.BinaryMarshaler), true
}

func marshalPojo(pojo any) ([]byte, error) {
	if bm, ok := binaryMarshaler(pojo); ok {
		return bm.MarshalBinary()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pojo); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unmarshalPojo returns a value (not a pointer) of type t.
func unmarshalPojo(t reflect.Type, data []byte) (any, error) {
	ptr := reflect.New(t)
	if reflect.PointerTo(t).Implements(binaryUnmarshalerType) {
		if err := ptr.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
